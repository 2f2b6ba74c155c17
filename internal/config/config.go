// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Training   TrainingConfig   `koanf:"training"`
	Popularity PopularityConfig `koanf:"popularity"`
	Model      ModelConfig      `koanf:"model"`
	Serving    ServingConfig    `koanf:"serving"`
	Import     ImportConfig     `koanf:"import"`
}

// DatabaseConfig configures the DuckDB rating store.
type DatabaseConfig struct {
	Path         string        `koanf:"path"`
	MaxMemory    string        `koanf:"max_memory"`
	Threads      int           `koanf:"threads"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig configures authentication, CORS and rate limiting.
type SecurityConfig struct {
	// AuthMode is "none" or "jwt".
	AuthMode  string `koanf:"auth_mode"`
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of tokens issued by the server's token command.
	TokenTTL time.Duration `koanf:"token_ttl"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// UserRatePerSecond and UserRateBurst throttle each authenticated subject.
	UserRatePerSecond float64 `koanf:"user_rate_per_second"`
	UserRateBurst     int     `koanf:"user_rate_burst"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// TrainingConfig configures the offline training pipeline.
type TrainingConfig struct {
	// MinItemRatings is applied first, MinUserRatings second.
	MinItemRatings int `koanf:"min_item_ratings"`
	MinUserRatings int `koanf:"min_user_ratings"`

	// Rank is the number of latent factors.
	Rank          int     `koanf:"rank"`
	MaxIterations int     `koanf:"max_iterations"`
	Tolerance     float64 `koanf:"tolerance"`
	Seed          int64   `koanf:"seed"`

	// NumWorkers bounds factorization parallelism; 0 means GOMAXPROCS.
	NumWorkers int `koanf:"num_workers"`

	Timeout time.Duration `koanf:"timeout"`

	// Interval > 0 keeps cmd/train running and retrains on that schedule.
	Interval time.Duration `koanf:"interval"`
}

// PopularityConfig configures the weighted popularity table.
type PopularityConfig struct {
	// Percentile of the per-item rating count distribution used as m.
	Percentile float64 `koanf:"percentile"`

	// BaselineFloor is the minimum count for an item to enter the percentile.
	BaselineFloor int `koanf:"baseline_floor"`

	TableSize int `koanf:"table_size"`
}

// ModelConfig configures the model bundle store.
type ModelConfig struct {
	Path         string `koanf:"path"`
	KeepVersions int    `koanf:"keep_versions"`
}

// ServingConfig configures the recommendation serving engine.
type ServingConfig struct {
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// CacheBackend is "memory", "badger" or "none".
	CacheBackend string        `koanf:"cache_backend"`
	CachePath    string        `koanf:"cache_path"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	CacheSize    int           `koanf:"cache_size"`

	RatedLookupTimeout time.Duration `koanf:"rated_lookup_timeout"`
	BreakerFailures    int           `koanf:"breaker_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// ImportConfig points at Book-Crossing style CSV exports to load before training.
type ImportConfig struct {
	BooksCSV   string `koanf:"books_csv"`
	UsersCSV   string `koanf:"users_csv"`
	RatingsCSV string `koanf:"ratings_csv"`
	Delimiter  string `koanf:"delimiter"`
}

// Enabled reports whether any CSV source is configured.
func (c *ImportConfig) Enabled() bool {
	return c.BooksCSV != "" || c.UsersCSV != "" || c.RatingsCSV != ""
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
