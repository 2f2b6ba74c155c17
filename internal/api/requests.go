// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/readora/internal/validation"
)

// MaxPageLimit bounds the limit query parameter on every list endpoint.
const MaxPageLimit = 100

// PopularRequest holds the parameters of GET /popular.
type PopularRequest struct {
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

// RecommendationsRequest holds the parameters of the recommendation endpoints.
type RecommendationsRequest struct {
	UserID string `path:"userID" validate:"required,entity_id"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
}

// UserRatingsRequest holds the parameters of GET /users/{userID}/ratings.
type UserRatingsRequest struct {
	UserID string `path:"userID" validate:"required,entity_id"`
}

// BookRequest holds the parameters of GET /books/{isbn}.
type BookRequest struct {
	ISBN string `path:"isbn" validate:"required,entity_id"`
}

// SearchRequest holds the parameters of GET /books.
type SearchRequest struct {
	Query string `query:"q" validate:"required,search_text,max=200"`
	Limit int    `query:"limit" validate:"gte=0,lte=100"`
}

// paramError is a malformed parameter detected before struct validation.
type paramError struct {
	field   string
	message string
}

func (e *paramError) Error() string {
	return e.field + " " + e.message
}

// queryInt parses an optional integer query parameter. Absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{field: key, message: "must be an integer"}
	}
	return n, nil
}

// pathParam returns a chi URL parameter.
func pathParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// validateRequest validates req and writes a 400 response when it fails.
// It reports whether the handler should continue.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusBadRequest, &APIResponse{
		Status:   "error",
		Metadata: newErrorMetadata(r),
		Error: &APIError{
			Code:    ErrCodeValidation,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
	return false
}

// respondParamError writes a 400 response for a malformed parameter.
func respondParamError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
}
