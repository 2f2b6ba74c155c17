// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/readora/internal/auth"
	"github.com/tomtom215/readora/internal/cache"
	"github.com/tomtom215/readora/internal/config"
	"github.com/tomtom215/readora/internal/database"
	"github.com/tomtom215/readora/internal/logging"
	"github.com/tomtom215/readora/internal/metrics"
	"github.com/tomtom215/readora/internal/recommend"
	"github.com/tomtom215/readora/internal/recommend/storage"
)

// ServingComponents holds what the HTTP layer serves from.
type ServingComponents struct {
	Engine *recommend.Engine
	Cache  cache.Cacher
}

// initServing loads the newest bundle and the popularity table and builds
// the engine. A missing bundle is tolerated; a corrupt one is not.
func initServing(ctx context.Context, cfg *config.Config, db *database.DB) (*ServingComponents, error) {
	logger := logging.WithComponent("serving")

	bundles, err := storage.NewBundleStore(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}

	bundle, err := bundles.LoadBundle(ctx)
	switch {
	case errors.Is(err, recommend.ErrModelBundleMissing):
		logger.Warn().Err(err).Msg("No model bundle found; serving popular books only until cmd/train has run")
		bundle = nil
	case err != nil:
		return nil, fmt.Errorf("load model bundle: %w", err)
	default:
		logger.Info().
			Int("version", bundle.Version).
			Int("users", bundle.Mapping.NumUsers()).
			Int("items", bundle.Mapping.NumItems()).
			Msg("Model bundle loaded")
	}

	popular, err := db.PopularBooks(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("load popularity table: %w", err)
	}
	if len(popular) == 0 {
		logger.Warn().Msg("Popularity table is empty; run cmd/train to generate it")
	}

	responseCache, err := cache.New(cache.Config{
		Type:     cache.Type(cfg.Serving.CacheBackend),
		TTL:      cfg.Serving.CacheTTL,
		Capacity: cfg.Serving.CacheSize,
		Path:     cfg.Serving.CachePath,
	})
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}

	engineCfg := recommend.EngineConfig{
		DefaultLimit:       cfg.Serving.DefaultLimit,
		MaxLimit:           cfg.Serving.MaxLimit,
		RatedLookupTimeout: cfg.Serving.RatedLookupTimeout,
		BreakerFailures:    cfg.Serving.BreakerFailures,
		BreakerTimeout:     cfg.Serving.BreakerTimeout,
		OnBreakerStateChange: func(from, to string) {
			metrics.RecordBreakerTransition("rating-store", from, to)
		},
	}

	var rc recommend.ResponseCache
	if responseCache != nil {
		rc = responseCache
	}
	engine := recommend.NewEngine(engineCfg, bundle, popular, db, rc, logging.Logger())

	info := engine.ModelInfo()
	metrics.SetModelInfo(info.Version, info.Loaded)
	logger.Info().
		Bool("model_loaded", info.Loaded).
		Int("popular_rows", info.PopularRows).
		Str("cache_backend", cfg.Serving.CacheBackend).
		Msg("Serving engine ready")

	return &ServingComponents{Engine: engine, Cache: responseCache}, nil
}

// initAuth builds the authentication middleware for the configured mode.
func initAuth(sec *config.SecurityConfig) (*auth.Middleware, error) {
	mode, err := auth.ParseAuthMode(sec.AuthMode)
	if err != nil {
		return nil, err
	}
	if mode != auth.AuthModeJWT {
		return auth.NewMiddleware(mode, nil, nil), nil
	}

	manager, err := auth.NewJWTManager(sec)
	if err != nil {
		return nil, fmt.Errorf("create JWT manager: %w", err)
	}
	limiter := auth.NewSubjectLimiter(sec.UserRatePerSecond, sec.UserRateBurst)
	limiter.StartCleanup(10 * time.Minute)
	return auth.NewMiddleware(mode, manager, limiter), nil
}

// issueToken signs a bearer token for subject.
func issueToken(sec *config.SecurityConfig, subject string) (string, error) {
	manager, err := auth.NewJWTManager(sec)
	if err != nil {
		return "", err
	}
	return manager.GenerateToken(subject)
}
