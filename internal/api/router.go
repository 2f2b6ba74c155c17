// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/readora/internal/auth"
	"github.com/tomtom215/readora/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. authMw may be nil, which disables
// authentication.
func NewRouter(handler *Handler, authMw *auth.Middleware, chiMw *ChiMiddleware) *Router {
	if authMw == nil {
		authMw = auth.NewMiddleware(auth.AuthModeNone, nil, nil)
	}
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	authMw.SetErrorWriter(authErrorWriter)
	return &Router{handler: handler, auth: authMw, chiMiddleware: chiMw}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(chiMiddleware(middleware.AccessLog))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeValidation, "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.auth.Authenticate))

		r.Get("/popular", router.handler.Popular)
		r.Get("/model", router.handler.Model)
		r.Get("/stats", router.handler.Stats)

		r.Get("/users/{userID}/recommendations", router.handler.UserRecommendations)
		r.Get("/users/{userID}/ratings", router.handler.UserRatings)
		r.Get("/me/recommendations", router.handler.MyRecommendations)

		r.Get("/books", router.handler.SearchBooks)
		r.Get("/books/{isbn}", router.handler.Book)
	})

	return r
}
