// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/readora/internal/metrics"
	"github.com/tomtom215/readora/internal/recommend"
)

// Trainer runs one training pipeline pass. *recommend.Trainer implements it.
type Trainer interface {
	Run(ctx context.Context) (*recommend.TrainingReport, error)
}

// TrainingServiceConfig configures scheduled retraining.
type TrainingServiceConfig struct {
	// TrainOnStartup runs the pipeline once before the first tick.
	TrainOnStartup bool

	// Interval between runs. Must be positive.
	Interval time.Duration
}

// TrainingService retrains the model on a fixed interval.
//
// A new bundle is written to the model store; the running engine keeps
// serving the bundle it was started with until the process restarts.
type TrainingService struct {
	trainer Trainer
	config  TrainingServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewTrainingService creates a training service. A non-positive interval
// means 24h.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(trainer Trainer, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &TrainingService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "training").Logger(),
		name:    "training-service",
	}
}

// Serve implements suture.Service. Training failures are logged and
// counted; they never stop the service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("interval", s.config.Interval).
		Msg("training service starting")

	if s.config.TrainOnStartup {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *TrainingService) runOnce(ctx context.Context) {
	start := time.Now()

	report, err := s.trainer.Run(ctx)
	RecordTrainingRun(report, err, time.Since(start))

	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		s.logger.Debug().Msg("training already running, skipping tick")
	case err != nil && ctx.Err() == nil:
		s.logger.Warn().Err(err).Msg("scheduled training failed")
	case err == nil:
		s.logger.Info().
			Int("version", report.Version).
			Msg("new model bundle written; restart the server to serve it")
	}
}

// RecordTrainingRun publishes the outcome of one training run.
func RecordTrainingRun(report *recommend.TrainingReport, err error, d time.Duration) {
	if errors.Is(err, recommend.ErrTrainingInProgress) {
		return
	}
	outcome := metrics.TrainingOutcome{Result: metrics.ResultSuccess, Duration: d}
	switch {
	case errors.Is(err, recommend.ErrTrainingDataInsufficient):
		outcome.Result = metrics.ResultInsufficientData
	case err != nil:
		outcome.Result = metrics.ResultError
	}
	if report != nil {
		outcome.NonNumeric = report.Ingest.NonNumeric
		outcome.OutOfRange = report.Ingest.OutOfRange
		outcome.BlankIDs = report.Ingest.BlankIDs
		outcome.Users = report.Users
		outcome.Items = report.Items
		outcome.NonZeros = report.NonZeros
		outcome.ReconstructionError = report.Model.ReconstructionError
	}
	metrics.RecordTrainingRun(outcome)
}

// String implements fmt.Stringer.
func (s *TrainingService) String() string {
	return s.name
}
