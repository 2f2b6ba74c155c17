// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/readora/internal/config"
	"github.com/tomtom215/readora/internal/database"
	"github.com/tomtom215/readora/internal/logging"
	"github.com/tomtom215/readora/internal/recommend"
	"github.com/tomtom215/readora/internal/recommend/algorithms"
	"github.com/tomtom215/readora/internal/recommend/storage"
	"github.com/tomtom215/readora/internal/supervisor"
	"github.com/tomtom215/readora/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	skipImport bool
	reportOnly bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.skipImport, "skip-import", false, "ignore configured CSV sources")
	flag.BoolVar(&opts.reportOnly, "report-only", false, "log the dataset report and exit without training")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		cancel()
		logging.Fatal().Err(err).Msg("Training failed")
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer) error {
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("model_path", cfg.Model.Path).
		Dur("interval", cfg.Training.Interval).
		Msg("Starting Readora trainer")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	if cfg.Import.Enabled() && !opts.skipImport {
		if err := importCSV(ctx, db, &cfg.Import); err != nil {
			return err
		}
	}

	if err := logDatasetReport(ctx, db); err != nil {
		return err
	}
	if opts.reportOnly {
		return nil
	}

	trainer, err := newTrainer(cfg, db)
	if err != nil {
		return err
	}

	if cfg.Training.Interval > 0 {
		return runScheduled(ctx, trainer, cfg.Training.Interval)
	}
	return runOnce(ctx, trainer, out)
}

func importCSV(ctx context.Context, db *database.DB, ic *config.ImportConfig) error {
	result, err := db.ImportCSV(ctx, database.CSVSources{
		BooksCSV:   ic.BooksCSV,
		UsersCSV:   ic.UsersCSV,
		RatingsCSV: ic.RatingsCSV,
		Delimiter:  ic.Delimiter,
	})
	if err != nil {
		return fmt.Errorf("import CSV: %w", err)
	}
	logging.Info().
		Int64("books", result.Books).
		Int64("users", result.Users).
		Int64("ratings", result.Ratings).
		Dur("duration", result.Duration).
		Msg("CSV import complete")
	return nil
}

func logDatasetReport(ctx context.Context, db *database.DB) error {
	report, err := db.DatasetReport(ctx)
	if err != nil {
		return fmt.Errorf("dataset report: %w", err)
	}
	logging.Info().
		Int64("books", report.Books).
		Int64("users", report.Users).
		Int64("rating_rows", report.RatingRows).
		Int64("valid_ratings", report.ValidRatings).
		Int64("explicit", report.ExplicitRatings).
		Int64("implicit", report.ImplicitRatings).
		Int64("duplicate_rows", report.DuplicateRows).
		Int64("duplicate_pairs", report.DuplicatePairs).
		Float64("isbn_match_percent", report.ISBNMatchPercent).
		Float64("mean_rating", report.Ratings.Mean).
		Msg("Dataset report")
	return nil
}

// newTrainer wires the DuckDB store, the bundle store and NMF into a trainer.
func newTrainer(cfg *config.Config, db *database.DB) (*recommend.Trainer, error) {
	bundles, err := storage.NewBundleStore(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}

	nmf := algorithms.NewNMF(algorithms.NMFConfig{
		Rank:          cfg.Training.Rank,
		MaxIterations: cfg.Training.MaxIterations,
		Tolerance:     cfg.Training.Tolerance,
		Seed:          cfg.Training.Seed,
		NumWorkers:    cfg.Training.NumWorkers,
	})

	trainerCfg := recommend.TrainerConfig{
		Thresholds: recommend.Thresholds{
			MinItemRatings: cfg.Training.MinItemRatings,
			MinUserRatings: cfg.Training.MinUserRatings,
		},
		Popularity: recommend.PopularityConfig{
			Percentile:    cfg.Popularity.Percentile,
			BaselineFloor: cfg.Popularity.BaselineFloor,
			TableSize:     cfg.Popularity.TableSize,
		},
		KeepVersions: cfg.Model.KeepVersions,
		Timeout:      cfg.Training.Timeout,
	}
	return recommend.NewTrainer(trainerCfg, db, nmf, bundles, db, logging.Logger()), nil
}

// runOnce trains a single time and writes the report to out.
func runOnce(ctx context.Context, trainer services.Trainer, out io.Writer) error {
	start := time.Now()
	report, err := trainer.Run(ctx)
	services.RecordTrainingRun(report, err, time.Since(start))
	if err != nil {
		return err
	}

	logging.Info().
		Str("run_id", report.RunID).
		Int("version", report.Version).
		Int("users", report.Users).
		Int("items", report.Items).
		Int("popular_rows", report.PopularRows).
		Dur("duration", report.Duration).
		Msg("Training complete")

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// runScheduled keeps retraining on interval until ctx is cancelled.
func runScheduled(ctx context.Context, trainer services.Trainer, interval time.Duration) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddBackgroundService(services.NewTrainingService(trainer, services.TrainingServiceConfig{
		TrainOnStartup: true,
		Interval:       interval,
	}, logging.Logger()))

	logging.Info().Dur("interval", interval).Msg("Training on schedule")
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}
