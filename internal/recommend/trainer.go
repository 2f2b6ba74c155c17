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
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrTrainingInProgress is returned when Run is called during another run.
var ErrTrainingInProgress = errors.New("training already in progress")

// TrainingDataSource is the read side of the rating store used by training.
type TrainingDataSource interface {
	Interactions(ctx context.Context) ([]Interaction, IngestStats, error)
	AllBooks(ctx context.Context) ([]Book, error)
}

// bundlePruner is implemented by repositories that can drop old versions.
type bundlePruner interface {
	Prune(keep int) (int, error)
}

// TrainerConfig configures a Trainer.
type TrainerConfig struct {
	Thresholds   Thresholds
	Popularity   PopularityConfig
	KeepVersions int
	Timeout      time.Duration
}

// DefaultTrainerConfig returns the default training configuration.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		Thresholds:   DefaultThresholds(),
		Popularity:   DefaultPopularityConfig(),
		KeepVersions: 3,
		Timeout:      30 * time.Minute,
	}
}

// TrainingReport summarizes one training run.
type TrainingReport struct {
	RunID                string        `json:"run_id"`
	Version              int           `json:"version"`
	Ingest               IngestStats   `json:"ingest"`
	RawInteractions      int           `json:"raw_interactions"`
	FilteredInteractions int           `json:"filtered_interactions"`
	Users                int           `json:"users"`
	Items                int           `json:"items"`
	NonZeros             int           `json:"non_zeros"`
	BooksInSnapshot      int           `json:"books_in_snapshot"`
	PopularRows          int           `json:"popular_rows"`
	PopularMinCount      float64       `json:"popular_min_count"`
	Model                TrainingInfo  `json:"model"`
	Duration             time.Duration `json:"duration"`
	FinishedAt           time.Time     `json:"finished_at"`
}

// Trainer runs the offline pipeline: filter, map, build matrix, factorize,
// persist the bundle, and regenerate the popularity table.
type Trainer struct {
	cfg        TrainerConfig
	source     TrainingDataSource
	factorizer Factorizer
	bundles    BundleRepository
	popular    PopularityWriter
	logger     zerolog.Logger

	runMu sync.Mutex
	last  atomic.Pointer[TrainingReport]
}

// NewTrainer creates a Trainer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(cfg TrainerConfig, source TrainingDataSource, factorizer Factorizer,
	bundles BundleRepository, popular PopularityWriter, logger zerolog.Logger) *Trainer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTrainerConfig().Timeout
	}
	return &Trainer{
		cfg:        cfg,
		source:     source,
		factorizer: factorizer,
		bundles:    bundles,
		popular:    popular,
		logger:     logger.With().Str("component", "trainer").Logger(),
	}
}

// Train runs the pipeline and discards the report.
func (t *Trainer) Train(ctx context.Context) error {
	_, err := t.Run(ctx)
	return err
}

// LastReport returns the report of the last successful run, or nil.
func (t *Trainer) LastReport() *TrainingReport {
	return t.last.Load()
}

// Run executes one training run. Only one run may be active at a time.
// The popularity table is regenerated even when the filtered data turns out
// to be insufficient for factorization.
func (t *Trainer) Run(ctx context.Context) (*TrainingReport, error) {
	if !t.runMu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer t.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	start := time.Now()
	report := &TrainingReport{RunID: runID(ctx)}
	logger := t.logger.With().Str("run_id", report.RunID).Logger()
	logger.Info().Msg("starting training run")

	interactions, books, err := t.load(ctx, report)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("rows_read", report.Ingest.RowsRead).
		Int("rows_kept", report.Ingest.RowsKept).
		Int("non_numeric", report.Ingest.NonNumeric).
		Int("out_of_range", report.Ingest.OutOfRange).
		Int("blank_ids", report.Ingest.BlankIDs).
		Int("books", len(books)).
		Msg("training data loaded")

	if err := t.refreshPopularity(ctx, interactions, books, report); err != nil {
		return nil, err
	}
	logger.Info().
		Int("rows", report.PopularRows).
		Float64("min_count", report.PopularMinCount).
		Msg("popularity table regenerated")

	bundle, err := t.fit(ctx, interactions, books, report)
	if err != nil {
		if errors.Is(err, ErrTrainingDataInsufficient) {
			logger.Error().Err(err).Msg("not enough data to train a model")
		}
		return nil, err
	}

	version, err := t.bundles.SaveBundle(ctx, bundle)
	if err != nil {
		return nil, fmt.Errorf("save model bundle: %w", err)
	}
	report.Version = version

	if p, ok := t.bundles.(bundlePruner); ok && t.cfg.KeepVersions > 0 {
		if removed, err := p.Prune(t.cfg.KeepVersions); err != nil {
			logger.Warn().Err(err).Msg("failed to prune old model bundles")
		} else if removed > 0 {
			logger.Debug().Int("removed", removed).Msg("pruned old model bundles")
		}
	}

	report.Duration = time.Since(start)
	report.FinishedAt = time.Now()
	t.last.Store(report)

	logger.Info().
		Int("version", version).
		Int("users", report.Users).
		Int("items", report.Items).
		Int("nnz", report.NonZeros).
		Int("iterations", report.Model.Iterations).
		Bool("converged", report.Model.Converged).
		Float64("reconstruction_error", report.Model.ReconstructionError).
		Dur("duration", report.Duration).
		Msg("training run complete")

	return report, nil
}

func (t *Trainer) load(ctx context.Context, report *TrainingReport) ([]Interaction, []Book, error) {
	var (
		interactions []Interaction
		books        []Book
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interactions, report.Ingest, err = t.source.Interactions(gctx)
		if err != nil {
			return fmt.Errorf("load interactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		books, err = t.source.AllBooks(gctx)
		if err != nil {
			return fmt.Errorf("load books: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	report.RawInteractions = len(interactions)
	return interactions, books, nil
}

func (t *Trainer) refreshPopularity(ctx context.Context, interactions []Interaction, books []Book, report *TrainingReport) error {
	catalogue := make(map[string]Book, len(books))
	for i := range books {
		if _, ok := catalogue[books[i].ISBN]; !ok {
			catalogue[books[i].ISBN] = books[i]
		}
	}
	table := ComputePopularity(interactions, catalogue, t.cfg.Popularity)
	if err := t.popular.ReplacePopularBooks(ctx, table.Rows); err != nil {
		return fmt.Errorf("write popularity table: %w", err)
	}
	report.PopularRows = len(table.Rows)
	report.PopularMinCount = table.MinCount
	return nil
}

func (t *Trainer) fit(ctx context.Context, interactions []Interaction, books []Book, report *TrainingReport) (*ModelBundle, error) {
	filtered, err := FilterInteractions(interactions, t.cfg.Thresholds)
	if err != nil {
		var tde *TrainingDataInsufficientError
		if errors.As(err, &tde) {
			tde.Interactions = len(interactions)
		}
		return nil, err
	}
	report.FilteredInteractions = len(filtered)

	mapping := BuildIndexMapping(filtered)
	report.Users = mapping.NumUsers()
	report.Items = mapping.NumItems()

	matrix, err := BuildInteractionMatrix(filtered, mapping)
	if err != nil {
		return nil, err
	}
	report.NonZeros = matrix.NNZ()

	factors, err := t.factorizer.Factorize(ctx, matrix)
	if err != nil {
		return nil, fmt.Errorf("factorize with %s: %w", t.factorizer.Name(), err)
	}
	report.Model = factors.Info

	bundle, err := NewModelBundle(factors, mapping, books)
	if err != nil {
		return nil, err
	}
	report.BooksInSnapshot = len(bundle.books)
	return bundle, nil
}

// runIDKey lets callers fix the run id used in logs and reports.
type runIDKey struct{}

// ContextWithRunID returns a context carrying a training run id.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
