// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/readora/internal/recommend"
)

// Artifact names that make up one bundle version.
const (
	ArtifactFactors  = "factors"
	ArtifactMappings = "mappings"
	ArtifactBooks    = "books"
	ArtifactManifest = "manifest"
)

var bundleArtifacts = []string{ArtifactFactors, ArtifactMappings, ArtifactBooks}

type factorsArtifact struct {
	Users    int
	Items    int
	Rank     int
	UserData []float64
	ItemData []float64
	Info     recommend.TrainingInfo
}

type mappingsArtifact struct {
	Tables recommend.MappingTables
}

type booksArtifact struct {
	Books []recommend.Book
}

// Manifest marks a bundle version as complete.
type Manifest struct {
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"created_at"`
	Users     int                    `json:"users"`
	Items     int                    `json:"items"`
	Rank      int                    `json:"rank"`
	Books     int                    `json:"books"`
	Checksums map[string]string      `json:"checksums"`
	Info      recommend.TrainingInfo `json:"training"`
}

// BundleStore saves and loads model bundles as versioned artifact sets.
type BundleStore struct {
	store *Store
}

var _ recommend.BundleRepository = (*BundleStore)(nil)

// NewBundleStore opens a bundle store rooted at dir.
func NewBundleStore(dir string) (*BundleStore, error) {
	s, err := NewStore(dir)
	if err != nil {
		return nil, err
	}
	return &BundleStore{store: s}, nil
}

// SaveBundle writes the three artifacts of b and then its manifest under a
// new version, which it returns.
func (b *BundleStore) SaveBundle(ctx context.Context, bundle *recommend.ModelBundle) (int, error) {
	if bundle == nil || bundle.Factors == nil || bundle.Mapping == nil {
		return 0, errors.New("save bundle: incomplete bundle")
	}

	// Versions above any leftover artifact so a partial save is never reused.
	version := b.store.MaxVersion() + 1

	userData, itemData := bundle.Factors.RawData()
	factors := factorsArtifact{
		Users:    bundle.Factors.NumUsers(),
		Items:    bundle.Factors.NumItems(),
		Rank:     bundle.Factors.Rank(),
		UserData: userData,
		ItemData: itemData,
		Info:     bundle.Factors.Info,
	}
	books := bundle.Books()

	payloads := map[string]interface{}{
		ArtifactFactors:  &factors,
		ArtifactMappings: &mappingsArtifact{Tables: bundle.Mapping.Tables()},
		ArtifactBooks:    &booksArtifact{Books: books},
	}

	manifest := Manifest{
		Version:   version,
		CreatedAt: time.Now().UTC(),
		Users:     factors.Users,
		Items:     factors.Items,
		Rank:      factors.Rank,
		Books:     len(books),
		Checksums: make(map[string]string, len(bundleArtifacts)),
		Info:      factors.Info,
	}
	for _, name := range bundleArtifacts {
		meta, err := b.store.Save(ctx, name, version, payloads[name])
		if err != nil {
			return 0, fmt.Errorf("save bundle v%d: %w", version, err)
		}
		manifest.Checksums[name] = meta.Checksum
	}

	if _, err := b.store.Save(ctx, ArtifactManifest, version, &manifest); err != nil {
		return 0, fmt.Errorf("save bundle v%d: %w", version, err)
	}
	return version, nil
}

// LoadBundle loads the latest complete bundle. It returns a
// ModelBundleMissingError when no manifest exists and a
// ModelBundleCorruptError when any artifact is absent, unreadable, or
// inconsistent with the others.
func (b *BundleStore) LoadBundle(ctx context.Context) (*recommend.ModelBundle, error) {
	version, ok := b.store.LatestVersion(ArtifactManifest)
	if !ok {
		return nil, &recommend.ModelBundleMissingError{Path: b.store.Dir()}
	}
	bundle, err := b.loadVersion(ctx, version)
	if err != nil {
		var corrupt *recommend.ModelBundleCorruptError
		if errors.As(err, &corrupt) && corrupt.Version == 0 {
			corrupt.Version = version
		}
		return nil, err
	}
	return bundle, nil
}

func (b *BundleStore) loadVersion(ctx context.Context, version int) (*recommend.ModelBundle, error) {
	var manifest Manifest
	if _, err := b.store.Load(ctx, ArtifactManifest, version, &manifest); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &recommend.ModelBundleCorruptError{
			Version: version, Artifact: ArtifactManifest, Reason: "unreadable", Err: err,
		}
	}

	var (
		factors  factorsArtifact
		mappings mappingsArtifact
		books    booksArtifact
	)
	targets := map[string]interface{}{
		ArtifactFactors:  &factors,
		ArtifactMappings: &mappings,
		ArtifactBooks:    &books,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range bundleArtifacts {
		g.Go(func() error {
			meta, err := b.store.Load(gctx, name, version, targets[name])
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &recommend.ModelBundleCorruptError{
					Version: version, Artifact: name, Reason: "unreadable", Err: err,
				}
			}
			if want := manifest.Checksums[name]; meta.Checksum != want {
				return &recommend.ModelBundleCorruptError{
					Version: version, Artifact: name,
					Reason: fmt.Sprintf("checksum %s does not match manifest %s", meta.Checksum, want),
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if factors.Users != manifest.Users || factors.Items != manifest.Items || factors.Rank != manifest.Rank {
		return nil, &recommend.ModelBundleCorruptError{
			Version: version, Artifact: ArtifactFactors,
			Reason: fmt.Sprintf("shape %dx%dx%d does not match manifest %dx%dx%d",
				factors.Users, factors.Items, factors.Rank, manifest.Users, manifest.Items, manifest.Rank),
		}
	}

	model, err := recommend.NewFactorModel(factors.Users, factors.Items, factors.Rank,
		factors.UserData, factors.ItemData, factors.Info)
	if err != nil {
		return nil, err
	}
	mapping, err := recommend.RestoreIndexMapping(mappings.Tables)
	if err != nil {
		return nil, err
	}
	bundle, err := recommend.NewModelBundle(model, mapping, books.Books)
	if err != nil {
		return nil, err
	}
	return bundle.WithVersion(version), nil
}

// Manifests returns the manifests of all complete versions, newest first.
// Unreadable manifests are skipped.
func (b *BundleStore) Manifests(ctx context.Context) ([]Manifest, error) {
	versions := b.store.Versions(ArtifactManifest)
	out := make([]Manifest, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		var m Manifest
		if _, err := b.store.Load(ctx, ArtifactManifest, versions[i], &m); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// LatestVersion returns the newest complete bundle version, or 0.
func (b *BundleStore) LatestVersion() int {
	v, _ := b.store.LatestVersion(ArtifactManifest)
	return v
}

// Prune keeps the newest keep complete versions and removes every other
// artifact file, including leftovers of interrupted saves older than the
// newest kept version. It returns the number of files removed.
func (b *BundleStore) Prune(keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	complete := b.store.Versions(ArtifactManifest)
	if len(complete) <= keep {
		return 0, nil
	}
	kept := make(map[int]struct{}, keep)
	for _, v := range complete[len(complete)-keep:] {
		kept[v] = struct{}{}
	}
	newest := complete[len(complete)-1]

	removed := 0
	names := append([]string{ArtifactManifest}, bundleArtifacts...)
	for _, name := range names {
		for _, v := range b.store.Versions(name) {
			if _, ok := kept[v]; ok || v > newest {
				continue
			}
			if err := b.store.Delete(name, v); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
