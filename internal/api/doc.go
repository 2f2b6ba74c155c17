// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

/*
Package api provides the HTTP interface of Readora.

Routing uses go-chi/chi with go-chi/cors and go-chi/httprate. Every JSON
endpoint answers with the same envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-02T15:04:05Z", "query_time_ms": 3},
	  "error": null
	}

Endpoints:

	GET /api/v1/health                         liveness and model state
	GET /api/v1/popular?limit=                 popularity table
	GET /api/v1/users/{userID}/recommendations personalized or fallback list
	GET /api/v1/me/recommendations             same, for the JWT subject
	GET /api/v1/users/{userID}/ratings         what a user has rated
	GET /api/v1/books?q=&limit=                title/author search
	GET /api/v1/books/{isbn}                   metadata and rating stats
	GET /api/v1/model                          loaded bundle description
	GET /api/v1/stats                          dataset report
	GET /metrics                               Prometheus exposition

Error codes map to statuses as follows:

	VALIDATION_ERROR   400
	UNAUTHORIZED       401
	NOT_FOUND          404
	RATE_LIMITED       429
	INTERNAL_ERROR     500
	MODEL_UNAVAILABLE  503
*/
package api
