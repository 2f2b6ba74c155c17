// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Command server serves book recommendations over HTTP.
//
// At start it loads the newest model bundle from model.path and the
// popularity table from the rating store, then serves both until it is
// stopped. Bundles written by cmd/train afterwards are picked up on the next
// restart. Without a bundle the server still starts and answers the popular
// endpoint; personalized endpoints return 503 MODEL_UNAVAILABLE. A bundle
// that exists but fails validation aborts start-up.
//
// Configuration is loaded by internal/config (defaults, then config.yaml,
// then environment variables):
//
//	DUCKDB_PATH=/data/readora.duckdb
//	MODEL_PATH=/data/models
//	HTTP_PORT=8080
//	AUTH_MODE=jwt JWT_SECRET=$(openssl rand -base64 32)
//
// With AUTH_MODE=jwt every /api/v1 endpoint except /health requires a bearer
// token. Tokens are issued offline:
//
//	server -issue-token 276725
//
// SIGINT and SIGTERM trigger a graceful shutdown.
package main
