// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/readora/internal/auth"
	"github.com/tomtom215/readora/internal/metrics"
	"github.com/tomtom215/readora/internal/recommend"
)

// PopularResponse is the body of GET /popular.
type PopularResponse struct {
	Count int                     `json:"count"`
	Books []recommend.PopularBook `json:"books"`
}

// Popular handles GET /api/v1/popular.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	req := PopularRequest{Limit: limit}
	if !validateRequest(w, r, &req) {
		return
	}

	books := h.engine.Popular(req.Limit)
	if books == nil {
		books = []recommend.PopularBook{}
	}
	metrics.RecordRecommendation(recommend.SourcePopularity, false, false, time.Since(start))
	respondSuccess(w, r, start, PopularResponse{Count: len(books), Books: books}, false)
}

// UserRecommendations handles GET /api/v1/users/{userID}/recommendations.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, pathParam(r, "userID"))
}

// MyRecommendations handles GET /api/v1/me/recommendations for the
// authenticated subject.
func (h *Handler) MyRecommendations(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized,
			"a bearer token is required for this endpoint", nil)
		return
	}
	h.recommend(w, r, subject)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, userID string) {
	start := time.Now()

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	req := RecommendationsRequest{UserID: userID, Limit: limit}
	if !validateRequest(w, r, &req) {
		return
	}

	resp, err := h.engine.Recommend(r.Context(), req.UserID, req.Limit)
	switch {
	case errors.Is(err, recommend.ErrModelBundleMissing):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeModelUnavailable,
			"no trained model is loaded; popular books remain available at /api/v1/popular", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal,
			"failed to compute recommendations", err)
		return
	}

	if resp.Items == nil {
		resp.Items = []recommend.Recommendation{}
	}
	metrics.RecordRecommendation(resp.Source, resp.ColdStart, resp.Degraded, time.Since(start))
	respondSuccess(w, r, start, resp, resp.Cached)
}
