// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const artifactExt = ".gob.gz"

// ErrArtifactNotFound is returned when no file exists for a name/version.
var ErrArtifactNotFound = errors.New("artifact not found")

// ErrChecksumMismatch is returned when a payload does not match its header.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ArtifactMetadata describes one stored artifact file.
type ArtifactMetadata struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	SavedAt   time.Time `json:"saved_at"`
	Checksum  string    `json:"checksum"`
	SizeBytes int64     `json:"size_bytes"`
}

// storedFile is the on-disk format for artifact files.
type storedFile struct {
	Metadata       ArtifactMetadata
	CompressedData []byte
}

// Store manages versioned artifact files in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// versions lists the stored versions per artifact name, ascending.
	versions map[string][]int
}

// NewStore creates a store at baseDir, creating the directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	s := &Store{baseDir: baseDir, versions: make(map[string][]int)}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseArtifactFilename(entry.Name())
		if !ok {
			continue
		}
		s.addVersion(name, version)
	}
	return nil
}

// parseArtifactFilename splits "factors_v3.gob.gz" into ("factors", 3).
func parseArtifactFilename(filename string) (string, int, bool) {
	base, found := strings.CutSuffix(filename, artifactExt)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return base[:idx], version, true
}

func (s *Store) addVersion(name string, version int) {
	vs := s.versions[name]
	i := sort.SearchInts(vs, version)
	if i < len(vs) && vs[i] == version {
		return
	}
	vs = append(vs, 0)
	copy(vs[i+1:], vs[i:])
	vs[i] = version
	s.versions[name] = vs
}

func (s *Store) removeVersion(name string, version int) {
	vs := s.versions[name]
	i := sort.SearchInts(vs, version)
	if i < len(vs) && vs[i] == version {
		vs = append(vs[:i], vs[i+1:]...)
	}
	if len(vs) == 0 {
		delete(s.versions, name)
		return
	}
	s.versions[name] = vs
}

func (s *Store) artifactPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, artifactExt))
}

// Save gob-encodes data, checksums and compresses it, and writes it as
// name at version. The file appears atomically.
func (s *Store) Save(ctx context.Context, name string, version int, data interface{}) (*ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(data); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("compress %s: %w", name, err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression of %s: %w", name, err)
	}

	sf := storedFile{
		Metadata: ArtifactMetadata{
			Name:      name,
			Version:   version,
			SavedAt:   time.Now(),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
		},
		CompressedData: compressed.Bytes(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(s.artifactPath(name, version), &sf); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	s.addVersion(name, version)
	return &sf.Metadata, nil
}

func (s *Store) writeFile(path string, sf *storedFile) error {
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // encode error takes precedence
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Load reads name at version into target. Version 0 means the latest.
func (s *Store) Load(ctx context.Context, name string, version int, target interface{}) (*ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		vs := s.versions[name]
		if len(vs) == 0 {
			return nil, fmt.Errorf("%s: %w", name, ErrArtifactNotFound)
		}
		version = vs[len(vs)-1]
	}

	f, err := os.Open(s.artifactPath(name, version))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s v%d: %w", name, version, ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("open %s v%d: %w", name, version, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read %s v%d: %w", name, version, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress %s v%d: %w", name, version, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // in-memory reader

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed %s v%d: %w", name, version, err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("%s v%d: %w: expected %s, got %s",
			name, version, ErrChecksumMismatch, sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode %s v%d: %w", name, version, err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the highest stored version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vs := s.versions[name]
	if len(vs) == 0 {
		return 0, false
	}
	return vs[len(vs)-1], true
}

// Versions returns the stored versions of name in ascending order.
func (s *Store) Versions(name string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.versions[name]...)
}

// MaxVersion returns the highest version of any artifact.
func (s *Store) MaxVersion() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	highest := 0
	for _, vs := range s.versions {
		if n := len(vs); n > 0 && vs[n-1] > highest {
			highest = vs[n-1]
		}
	}
	return highest
}

// Delete removes one artifact version.
func (s *Store) Delete(name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.artifactPath(name, version)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s v%d: %w", name, version, err)
	}
	s.removeVersion(name, version)
	return nil
}
