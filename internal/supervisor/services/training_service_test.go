// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/readora/internal/metrics"
	"github.com/tomtom215/readora/internal/recommend"
)

type fakeTrainer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeTrainer) Run(context.Context) (*recommend.TrainingReport, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.TrainingReport{Version: int(f.calls.Load()), Users: 2, Items: 3, NonZeros: 4}, nil
}

func runFor(t *testing.T, svc *TrainingService, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return svc.Serve(ctx)
}

func TestNewTrainingService_DefaultInterval(t *testing.T) {
	svc := NewTrainingService(&fakeTrainer{}, TrainingServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.config.Interval)
	}
	if svc.String() != "training-service" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestTrainingService_TrainOnStartup(t *testing.T) {
	trainer := &fakeTrainer{}
	svc := NewTrainingService(trainer, TrainingServiceConfig{TrainOnStartup: true, Interval: time.Hour}, zerolog.Nop())

	err := runFor(t, svc, 50*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v", err)
	}
	if trainer.calls.Load() != 1 {
		t.Errorf("Run calls = %d, want 1", trainer.calls.Load())
	}
}

func TestTrainingService_Scheduled(t *testing.T) {
	trainer := &fakeTrainer{}
	svc := NewTrainingService(trainer, TrainingServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

	_ = runFor(t, svc, 100*time.Millisecond)
	if trainer.calls.Load() < 2 {
		t.Errorf("Run calls = %d, want at least 2", trainer.calls.Load())
	}
}

func TestTrainingService_FailuresDoNotStopService(t *testing.T) {
	trainer := &fakeTrainer{err: errors.New("store unavailable")}
	svc := NewTrainingService(trainer, TrainingServiceConfig{TrainOnStartup: true, Interval: 10 * time.Millisecond}, zerolog.Nop())

	err := runFor(t, svc, 60*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v, want deadline", err)
	}
	if trainer.calls.Load() < 2 {
		t.Errorf("Run calls = %d, want retries", trainer.calls.Load())
	}
}

func TestRecordTrainingRun(t *testing.T) {
	before := func(result string) float64 {
		return testutil.ToFloat64(metrics.TrainingRuns.WithLabelValues(result))
	}
	success := before(metrics.ResultSuccess)
	insufficient := before(metrics.ResultInsufficientData)
	failed := before(metrics.ResultError)

	RecordTrainingRun(&recommend.TrainingReport{Users: 5, Items: 7}, nil, time.Second)
	RecordTrainingRun(nil, &recommend.TrainingDataInsufficientError{Users: 0, Items: 0}, time.Second)
	RecordTrainingRun(nil, errors.New("boom"), time.Second)
	RecordTrainingRun(nil, recommend.ErrTrainingInProgress, time.Second)

	if got := before(metrics.ResultSuccess) - success; got != 1 {
		t.Errorf("success delta = %v", got)
	}
	if got := before(metrics.ResultInsufficientData) - insufficient; got != 1 {
		t.Errorf("insufficient delta = %v", got)
	}
	if got := before(metrics.ResultError) - failed; got != 1 {
		t.Errorf("error delta = %v", got)
	}
}
