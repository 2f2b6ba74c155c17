// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// Response sources.
const (
	SourceModel      = "model"
	SourcePopularity = "popularity"
)

// RatingReader is the per-request read side of the rating store.
type RatingReader interface {
	RatedItems(ctx context.Context, userID string) (map[string]struct{}, error)
}

// ResponseCache stores encoded responses. Implementations bound entry lifetime.
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// EngineConfig configures the serving engine.
type EngineConfig struct {
	DefaultLimit       int
	MaxLimit           int
	RatedLookupTimeout time.Duration
	BreakerFailures    int
	BreakerTimeout     time.Duration

	// OnBreakerStateChange is called when the rating store breaker changes state.
	OnBreakerStateChange func(from, to string)
}

// DefaultEngineConfig returns the default serving configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultLimit:       DefaultLimit,
		MaxLimit:           100,
		RatedLookupTimeout: 2 * time.Second,
		BreakerFailures:    5,
		BreakerTimeout:     30 * time.Second,
	}
}

// Recommendation is one entry of a Response.
type Recommendation struct {
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
	Book  Book    `json:"book"`
}

// Response is the engine's answer to a recommendation request.
type Response struct {
	UserID       string           `json:"user_id"`
	Source       string           `json:"source"`
	ColdStart    bool             `json:"cold_start"`
	Degraded     bool             `json:"degraded"`
	ModelVersion int              `json:"model_version,omitempty"`
	Cached       bool             `json:"cached"`
	Items        []Recommendation `json:"items"`
}

// Engine serves recommendations from one immutable ModelBundle and the
// popularity table loaded at start. It is safe for concurrent use; nothing
// it holds is mutated after NewEngine returns.
type Engine struct {
	cfg     EngineConfig
	bundle  *ModelBundle
	ranker  *Ranker
	popular []PopularBook
	ratings RatingReader
	cache   ResponseCache
	breaker *gobreaker.CircuitBreaker[map[string]struct{}]
	logger  zerolog.Logger
}

// NewEngine creates a serving engine. bundle may be nil, in which case only
// the popularity table is served and Recommend reports ErrModelBundleMissing.
// cache may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg EngineConfig, bundle *ModelBundle, popular []PopularBook,
	ratings RatingReader, cache ResponseCache, logger zerolog.Logger) *Engine {
	defaults := DefaultEngineConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = max(defaults.MaxLimit, cfg.DefaultLimit)
	}
	if cfg.RatedLookupTimeout <= 0 {
		cfg.RatedLookupTimeout = defaults.RatedLookupTimeout
	}
	if cfg.BreakerFailures <= 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	e := &Engine{
		cfg:     cfg,
		bundle:  bundle,
		popular: append([]PopularBook(nil), popular...),
		ratings: ratings,
		cache:   cache,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}
	if bundle != nil {
		e.ranker = NewRanker(bundle)
	}

	failures := uint32(cfg.BreakerFailures) //nolint:gosec // validated positive
	e.breaker = gobreaker.NewCircuitBreaker[map[string]struct{}](gobreaker.Settings{
		Name:        "rating-store",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("rating store circuit breaker state changed")
			if cfg.OnBreakerStateChange != nil {
				cfg.OnBreakerStateChange(from.String(), to.String())
			}
		},
	})
	return e
}

// ModelLoaded reports whether a bundle is available.
func (e *Engine) ModelLoaded() bool {
	return e.bundle != nil
}

// Bundle returns the loaded bundle, or nil.
func (e *Engine) Bundle() *ModelBundle {
	return e.bundle
}

// ModelInfo describes the loaded bundle.
type ModelInfo struct {
	Loaded      bool         `json:"loaded"`
	Version     int          `json:"version,omitempty"`
	Users       int          `json:"users,omitempty"`
	Items       int          `json:"items,omitempty"`
	Books       int          `json:"books,omitempty"`
	PopularRows int          `json:"popular_rows"`
	Training    TrainingInfo `json:"training"`
}

// ModelInfo reports what the engine is serving.
func (e *Engine) ModelInfo() ModelInfo {
	info := ModelInfo{PopularRows: len(e.popular)}
	if e.bundle == nil {
		return info
	}
	info.Loaded = true
	info.Version = e.bundle.Version
	info.Users = e.bundle.Mapping.NumUsers()
	info.Items = e.bundle.Mapping.NumItems()
	info.Books = len(e.bundle.books)
	info.Training = e.bundle.Factors.Info
	return info
}

// Limit clamps a requested result count to the configured bounds.
func (e *Engine) Limit(n int) int {
	if n <= 0 {
		return e.cfg.DefaultLimit
	}
	return min(n, e.cfg.MaxLimit)
}

// Popular returns the first n rows of the popularity table.
func (e *Engine) Popular(n int) []PopularBook {
	return SlicePopular(e.popular, nil, e.Limit(n))
}

// Recommend returns up to n books for userID.
//
// Unknown users get the popularity table minus what they already rated.
// When the rating store cannot be reached the popularity table is returned
// unfiltered and the response is marked degraded.
func (e *Engine) Recommend(ctx context.Context, userID string, n int) (*Response, error) {
	if e.bundle == nil {
		return nil, fmt.Errorf("recommendations for %q: %w", userID, ErrModelBundleMissing)
	}
	n = e.Limit(n)
	logger := e.logger.With().Str("user_id", userID).Int("limit", n).Logger()

	key := fmt.Sprintf("rec:v%d:%s:%d", e.bundle.Version, userID, n)
	if resp := e.cached(key, logger); resp != nil {
		return resp, nil
	}

	rated, err := e.ratedItems(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn().Err(err).Msg("rated items unavailable, degrading to popularity")
		return e.popularResponse(userID, nil, n, false, true), nil
	}

	ranking := e.ranker.Rank(userID, rated, n)
	var resp *Response
	switch ranking.Status {
	case RankStatusColdStart:
		logger.Debug().Int("rated", len(rated)).Msg("cold start, serving popular books")
		resp = e.popularResponse(userID, rated, n, true, false)
	default:
		resp = e.modelResponse(userID, ranking)
	}

	e.store(key, resp, logger)
	return resp, nil
}

func (e *Engine) ratedItems(ctx context.Context, userID string) (map[string]struct{}, error) {
	if e.ratings == nil {
		return map[string]struct{}{}, nil
	}
	return e.breaker.Execute(func() (map[string]struct{}, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, e.cfg.RatedLookupTimeout)
		defer cancel()
		return e.ratings.RatedItems(lookupCtx, userID)
	})
}

func (e *Engine) modelResponse(userID string, ranking Ranking) *Response {
	items := make([]Recommendation, 0, len(ranking.Items))
	for i, it := range ranking.Items {
		book, _ := e.bundle.Book(it.ItemID)
		items = append(items, Recommendation{Rank: i + 1, Score: it.Score, Book: book})
	}
	return &Response{
		UserID:       userID,
		Source:       SourceModel,
		ModelVersion: e.bundle.Version,
		Items:        items,
	}
}

func (e *Engine) popularResponse(userID string, exclude map[string]struct{}, n int, coldStart, degraded bool) *Response {
	rows := SlicePopular(e.popular, exclude, n)
	items := make([]Recommendation, 0, len(rows))
	for i := range rows {
		items = append(items, Recommendation{
			Rank:  i + 1,
			Score: rows[i].Score,
			Book: Book{
				ISBN:     rows[i].ItemID,
				Title:    rows[i].Title,
				Author:   rows[i].Author,
				ImageURL: rows[i].ImageURL,
			},
		})
	}
	resp := &Response{
		UserID:    userID,
		Source:    SourcePopularity,
		ColdStart: coldStart,
		Degraded:  degraded,
		Items:     items,
	}
	if e.bundle != nil {
		resp.ModelVersion = e.bundle.Version
	}
	return resp
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) cached(key string, logger zerolog.Logger) *Response {
	if e.cache == nil {
		return nil
	}
	data, ok := e.cache.Get(key)
	if !ok {
		return nil
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Warn().Err(err).Msg("discarding undecodable cache entry")
		return nil
	}
	resp.Cached = true
	logger.Debug().Msg("cache hit")
	return &resp
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) store(key string, resp *Response, logger zerolog.Logger) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to encode response for cache")
		return
	}
	e.cache.Set(key, data)
}
