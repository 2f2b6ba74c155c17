// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package api

import (
	"context"
	"time"

	"github.com/tomtom215/readora/internal/cache"
	"github.com/tomtom215/readora/internal/database"
	"github.com/tomtom215/readora/internal/recommend"
)

// Recommender serves recommendations. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, userID string, n int) (*recommend.Response, error)
	Popular(n int) []recommend.PopularBook
	ModelInfo() recommend.ModelInfo
	ModelLoaded() bool
}

// Store is the read side of the rating store used by the API.
// *database.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	Book(ctx context.Context, isbn string) (*recommend.Book, error)
	ItemRatingStats(ctx context.Context, isbn string) (int64, float64, error)
	SearchBooks(ctx context.Context, q string, limit int) ([]recommend.Book, error)
	UserRatingSummary(ctx context.Context, userID string) (*database.UserRatingSummary, error)
	DatasetReport(ctx context.Context) (*database.DatasetReport, error)
}

// reportCacheKey is where the encoded dataset report is cached.
const reportCacheKey = "report:dataset"

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: health and model endpoints
//   - handlers_recommend.go: popular and recommendation endpoints
//   - handlers_books.go: book lookup, search and user ratings
//   - handlers_stats.go: dataset report
type Handler struct {
	engine    Recommender
	store     Store
	cache     cache.Cacher
	version   string
	startTime time.Time
}

// NewHandler creates a handler. cache may be nil, in which case the dataset
// report is recomputed on every request.
func NewHandler(engine Recommender, store Store, c cache.Cacher, version string) *Handler {
	return &Handler{
		engine:    engine,
		store:     store,
		cache:     c,
		version:   version,
		startTime: time.Now(),
	}
}
