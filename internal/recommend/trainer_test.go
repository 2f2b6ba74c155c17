// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSource struct {
	interactions []Interaction
	books        []Book
	stats        IngestStats
	err          error
}

func (f *fakeSource) Interactions(context.Context) ([]Interaction, IngestStats, error) {
	return f.interactions, f.stats, f.err
}

func (f *fakeSource) AllBooks(context.Context) ([]Book, error) {
	return f.books, nil
}

// constantFactorizer returns all-ones factors of the requested rank.
type constantFactorizer struct {
	rank    int
	block   chan struct{}
	started chan struct{}
}

func (c *constantFactorizer) Name() string { return "constant" }

func (c *constantFactorizer) Factorize(ctx context.Context, m *SparseMatrix) (*FactorModel, error) {
	if c.started != nil {
		close(c.started)
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	userData := make([]float64, m.Rows()*c.rank)
	itemData := make([]float64, c.rank*m.Cols())
	for i := range userData {
		userData[i] = 1
	}
	for i := range itemData {
		itemData[i] = 1
	}
	return NewFactorModel(m.Rows(), m.Cols(), c.rank, userData, itemData,
		TrainingInfo{Algorithm: "constant", Rank: c.rank, Iterations: 1, Converged: true})
}

type memoryBundles struct {
	mu      sync.Mutex
	saved   []*ModelBundle
	pruned  []int
	saveErr error
}

func (m *memoryBundles) SaveBundle(_ context.Context, b *ModelBundle) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saved = append(m.saved, b)
	return len(m.saved), nil
}

func (m *memoryBundles) LoadBundle(context.Context) (*ModelBundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return nil, &ModelBundleMissingError{Path: "memory"}
	}
	return m.saved[len(m.saved)-1].WithVersion(len(m.saved)), nil
}

func (m *memoryBundles) Prune(keep int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned = append(m.pruned, keep)
	return 0, nil
}

type memoryPopular struct {
	rows  []PopularBook
	calls int
}

func (m *memoryPopular) ReplacePopularBooks(_ context.Context, rows []PopularBook) error {
	m.rows = rows
	m.calls++
	return nil
}

// gridSource rates every item by every user.
func gridSource(users, items int) *fakeSource {
	src := &fakeSource{}
	for u := 0; u < users; u++ {
		for i := 0; i < items; i++ {
			src.interactions = append(src.interactions, Interaction{
				UserID: fmt.Sprintf("u%d", u),
				ItemID: fmt.Sprintf("i%d", i),
				Rating: float64((u + i) % 11),
			})
		}
	}
	for i := 0; i < items; i++ {
		src.books = append(src.books, Book{ISBN: fmt.Sprintf("i%d", i), Title: fmt.Sprintf("Book %d", i)})
	}
	src.stats = IngestStats{RowsRead: len(src.interactions) + 2, RowsKept: len(src.interactions), NonNumeric: 2}
	return src
}

func newTestTrainer(src TrainingDataSource, f Factorizer, bundles BundleRepository, popular PopularityWriter) *Trainer {
	cfg := DefaultTrainerConfig()
	cfg.Thresholds = Thresholds{MinItemRatings: 3, MinUserRatings: 3}
	cfg.Timeout = 10 * time.Second
	return NewTrainer(cfg, src, f, bundles, popular, zerolog.Nop())
}

func TestTrainer_Run(t *testing.T) {
	src := gridSource(4, 5)
	bundles := &memoryBundles{}
	popular := &memoryPopular{}
	trainer := newTestTrainer(src, &constantFactorizer{rank: 2}, bundles, popular)

	report, err := trainer.Run(ContextWithRunID(context.Background(), "run-1"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", report.RunID)
	}
	if report.Version != 1 || len(bundles.saved) != 1 {
		t.Errorf("Version = %d with %d saves, want 1", report.Version, len(bundles.saved))
	}
	if report.Users != 4 || report.Items != 5 || report.NonZeros != 20 {
		t.Errorf("report shape U=%d I=%d nnz=%d", report.Users, report.Items, report.NonZeros)
	}
	if report.Ingest.NonNumeric != 2 || report.Ingest.Dropped() != 2 {
		t.Errorf("Ingest = %+v, want 2 non-numeric", report.Ingest)
	}
	if report.BooksInSnapshot != 5 {
		t.Errorf("BooksInSnapshot = %d, want 5", report.BooksInSnapshot)
	}
	if popular.calls != 1 || report.PopularRows != len(popular.rows) || len(popular.rows) == 0 {
		t.Errorf("popularity written %d times with %d rows, report says %d", popular.calls, len(popular.rows), report.PopularRows)
	}
	if len(bundles.pruned) != 1 || bundles.pruned[0] != 3 {
		t.Errorf("pruned = %v, want [3]", bundles.pruned)
	}
	if trainer.LastReport() != report {
		t.Error("LastReport() does not return the last run")
	}
}

func TestTrainer_InsufficientData(t *testing.T) {
	src := &fakeSource{interactions: []Interaction{
		{UserID: "u1", ItemID: "i1", Rating: 10},
		{UserID: "u1", ItemID: "i2", Rating: 8},
		{UserID: "u2", ItemID: "i1", Rating: 9},
	}}
	bundles := &memoryBundles{}
	popular := &memoryPopular{}
	cfg := DefaultTrainerConfig()
	trainer := NewTrainer(cfg, src, &constantFactorizer{rank: 2}, bundles, popular, zerolog.Nop())

	_, err := trainer.Run(context.Background())
	if !errors.Is(err, ErrTrainingDataInsufficient) {
		t.Fatalf("Run() error = %v, want ErrTrainingDataInsufficient", err)
	}
	var tde *TrainingDataInsufficientError
	if errors.As(err, &tde) && tde.Interactions != 3 {
		t.Errorf("Interactions = %d, want 3", tde.Interactions)
	}
	if len(bundles.saved) != 0 {
		t.Error("no bundle should be saved")
	}
	if popular.calls != 1 {
		t.Errorf("popularity written %d times, want 1", popular.calls)
	}
	if trainer.LastReport() != nil {
		t.Error("failed run should not replace LastReport")
	}
}

func TestTrainer_ConcurrentRunRejected(t *testing.T) {
	f := &constantFactorizer{rank: 1, block: make(chan struct{}), started: make(chan struct{})}
	trainer := newTestTrainer(gridSource(3, 3), f, &memoryBundles{}, &memoryPopular{})

	done := make(chan error, 1)
	go func() { done <- trainer.Train(context.Background()) }()
	<-f.started

	if _, err := trainer.Run(context.Background()); !errors.Is(err, ErrTrainingInProgress) {
		t.Errorf("second Run() error = %v, want ErrTrainingInProgress", err)
	}

	close(f.block)
	if err := <-done; err != nil {
		t.Errorf("first run error = %v", err)
	}
}

func TestTrainer_Errors(t *testing.T) {
	sourceErr := errors.New("database is locked")
	saveErr := errors.New("disk full")

	tests := []struct {
		name    string
		src     *fakeSource
		bundles *memoryBundles
		want    error
	}{
		{"source failure", &fakeSource{err: sourceErr}, &memoryBundles{}, sourceErr},
		{"save failure", gridSource(3, 3), &memoryBundles{saveErr: saveErr}, saveErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trainer := newTestTrainer(tt.src, &constantFactorizer{rank: 1}, tt.bundles, &memoryPopular{})
			if _, err := trainer.Run(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTrainer_Timeout(t *testing.T) {
	f := &constantFactorizer{rank: 1, block: make(chan struct{})}
	cfg := DefaultTrainerConfig()
	cfg.Thresholds = Thresholds{MinItemRatings: 1, MinUserRatings: 1}
	cfg.Timeout = 20 * time.Millisecond
	trainer := NewTrainer(cfg, gridSource(2, 2), f, &memoryBundles{}, &memoryPopular{}, zerolog.Nop())

	if _, err := trainer.Run(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}
