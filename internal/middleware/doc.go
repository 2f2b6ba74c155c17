// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

/*
Package middleware provides HTTP middleware shared by the API router.

Middleware here uses the http.HandlerFunc form; the router adapts each to
chi's func(http.Handler) http.Handler.

  - RequestID: assigns or propagates X-Request-ID and stores it in the
    request context so logging.Ctx includes it.
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labelled by chi route pattern.
  - AccessLog: one zerolog line per request, level chosen by status class.

Order matters: RequestID must run before AccessLog so log lines carry the ID.
*/
package middleware
