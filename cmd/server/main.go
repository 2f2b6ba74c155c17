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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/readora/internal/api"
	"github.com/tomtom215/readora/internal/cache"
	"github.com/tomtom215/readora/internal/config"
	"github.com/tomtom215/readora/internal/database"
	"github.com/tomtom215/readora/internal/logging"
	"github.com/tomtom215/readora/internal/metrics"
	"github.com/tomtom215/readora/internal/supervisor"
	"github.com/tomtom215/readora/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	issueFor := flag.String("issue-token", "", "print a signed bearer token for the given user ID and exit")
	flag.Parse()

	startTime := time.Now()

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

	if *issueFor != "" {
		token, err := issueToken(&cfg.Security, *issueFor)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to issue token")
		}
		fmt.Println(token)
		return
	}

	if err := run(cfg, startTime); err != nil {
		logging.Fatal().Err(err).Msg("Server stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config, startTime time.Time) error {
	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("model_path", cfg.Model.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting Readora server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serving, err := initServing(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeCache(serving.Cache)

	authMw, err := initAuth(&cfg.Security)
	if err != nil {
		return err
	}
	defer authMw.Stop()

	handler := api.NewHandler(serving.Engine, db, serving.Cache, version)
	router := api.NewRouter(handler, authMw, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	if lru, ok := serving.Cache.(*cache.LRUCache); ok {
		tree.AddBackgroundService(services.NewJanitorService(lru, time.Minute))
	}

	metrics.SetAppInfo(version, startTime)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
		serveErr = err
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return serveErr
}

func closeCache(c cache.Cacher) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing response cache")
	}
}
