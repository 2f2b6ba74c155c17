// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/readora/internal/database"
	"github.com/tomtom215/readora/internal/recommend"
)

// BookDetail is the body of GET /books/{isbn}.
type BookDetail struct {
	recommend.Book
	RatingCount   int64   `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`
}

// SearchResponse is the body of GET /books.
type SearchResponse struct {
	Query string           `json:"query"`
	Count int              `json:"count"`
	Books []recommend.Book `json:"books"`
}

// Book handles GET /api/v1/books/{isbn}.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := BookRequest{ISBN: pathParam(r, "isbn")}
	if !validateRequest(w, r, &req) {
		return
	}

	book, err := h.store.Book(r.Context(), req.ISBN)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "book not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to load book", err)
		return
	}

	count, mean, err := h.store.ItemRatingStats(r.Context(), req.ISBN)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to load rating statistics", err)
		return
	}

	respondSuccess(w, r, start, BookDetail{Book: *book, RatingCount: count, AverageRating: mean}, false)
}

// SearchBooks handles GET /api/v1/books?q=.
func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondParamError(w, r, err)
		return
	}
	req := SearchRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if !validateRequest(w, r, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = database.DefaultSearchLimit
	}

	books, err := h.store.SearchBooks(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "search failed", err)
		return
	}
	if books == nil {
		books = []recommend.Book{}
	}

	respondSuccess(w, r, start, SearchResponse{Query: req.Query, Count: len(books), Books: books}, false)
}

// UserRatings handles GET /api/v1/users/{userID}/ratings. A user without
// ratings gets an empty summary.
func (h *Handler) UserRatings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := UserRatingsRequest{UserID: pathParam(r, "userID")}
	if !validateRequest(w, r, &req) {
		return
	}

	summary, err := h.store.UserRatingSummary(r.Context(), req.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to load ratings", err)
		return
	}
	respondSuccess(w, r, start, summary, false)
}
