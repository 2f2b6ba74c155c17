// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/readora/internal/config"
	"github.com/tomtom215/readora/internal/recommend"
	"github.com/tomtom215/readora/internal/recommend/storage"
)

func writeCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// testConfig imports a three-user, three-book dataset into a fresh
// in-memory store and trains a rank-2 model from it.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Database: config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"},
		Import: config.ImportConfig{
			BooksCSV: writeCSV(t, dir, "Books.csv",
				`"ISBN";"Book-Title";"Book-Author";"Year-Of-Publication";"Publisher";"Image-URL-S";"Image-URL-M";"Image-URL-L"`,
				`"b1";"First";"A";"2001";"P";"s";"m";"l"`,
				`"b2";"Second";"B";"2002";"P";"s";"m";"l"`,
				`"b3";"Third";"C";"2003";"P";"s";"m";"l"`,
			),
			RatingsCSV: writeCSV(t, dir, "Ratings.csv",
				`"User-ID";"ISBN";"Book-Rating"`,
				`"u1";"b1";"9"`,
				`"u1";"b2";"7"`,
				`"u2";"b2";"8"`,
				`"u2";"b3";"5"`,
				`"u3";"b1";"6"`,
				`"u3";"b3";"10"`,
				`"u3";"b2";"abc"`,
			),
			Delimiter: ";",
		},
		Training: config.TrainingConfig{
			MinItemRatings: 1,
			MinUserRatings: 1,
			Rank:           2,
			MaxIterations:  50,
			Tolerance:      1e-4,
			Seed:           7,
			Timeout:        time.Minute,
		},
		Popularity: config.PopularityConfig{Percentile: 0.9, TableSize: 100},
		Model:      config.ModelConfig{Path: filepath.Join(dir, "models"), KeepVersions: 2},
	}
}

func TestRun_Once(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	if err := run(context.Background(), cfg, options{}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var report recommend.TrainingReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, out.String())
	}
	if report.Version != 1 {
		t.Errorf("Version = %d, want 1", report.Version)
	}
	if report.Users != 3 || report.Items != 3 || report.NonZeros != 6 {
		t.Errorf("shape = %d users, %d items, %d nnz; want 3, 3, 6", report.Users, report.Items, report.NonZeros)
	}
	if report.Ingest.NonNumeric != 1 {
		t.Errorf("Ingest.NonNumeric = %d, want 1", report.Ingest.NonNumeric)
	}

	bundles, err := storage.NewBundleStore(cfg.Model.Path)
	if err != nil {
		t.Fatal(err)
	}
	bundle, err := bundles.LoadBundle(context.Background())
	if err != nil {
		t.Fatalf("LoadBundle() error = %v", err)
	}
	if bundle.Factors.Rank() != 2 {
		t.Errorf("Rank = %d, want 2", bundle.Factors.Rank())
	}
}

func TestRun_ReportOnly(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	if err := run(context.Background(), cfg, options{reportOnly: true}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("report-only wrote %q", out.String())
	}
	if _, err := os.Stat(cfg.Model.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("report-only touched the model store: %v", err)
	}
}

func TestRun_InsufficientData(t *testing.T) {
	cfg := testConfig(t)
	cfg.Training.MinItemRatings = 10
	cfg.Training.MinUserRatings = 10

	err := run(context.Background(), cfg, options{}, &bytes.Buffer{})
	if !errors.Is(err, recommend.ErrTrainingDataInsufficient) {
		t.Fatalf("run() error = %v, want ErrTrainingDataInsufficient", err)
	}
}

func TestRun_SkipImport(t *testing.T) {
	cfg := testConfig(t)

	// The fresh store is empty without the import.
	err := run(context.Background(), cfg, options{skipImport: true}, &bytes.Buffer{})
	if !errors.Is(err, recommend.ErrTrainingDataInsufficient) {
		t.Fatalf("run() error = %v, want ErrTrainingDataInsufficient", err)
	}
}

func TestRunScheduled_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Training.Interval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, options{}, &bytes.Buffer{})
	}()

	manifest := filepath.Join(cfg.Model.Path, "manifest_v1.gob.gz")
	deadline := time.Now().Add(30 * time.Second)
	for {
		if _, err := os.Stat(manifest); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("startup training never produced a bundle")
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("scheduled run did not stop after cancel")
	}
}
