// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Package logging provides the zerolog-based structured logger shared by the
// Readora training job and serving process.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("bundle", "v3").Msg("Model bundle loaded")
//	logging.Ctx(ctx).Warn().Str("user_id", id).Msg("Cold start, serving popular books")
//
// Request-scoped loggers carry the request_id placed into the context by the
// HTTP middleware. Component loggers are created with WithComponent:
//
//	trainLog := logging.WithComponent("trainer")
//
// Libraries that speak log/slog (suture's sutureslog hook) receive a
// zerolog-backed slog.Logger from NewSlogLogger.
package logging
