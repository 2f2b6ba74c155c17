// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package config

import (
	"fmt"
	"strings"
)

// minJWTSecretLength is the minimum HS256 secret length accepted.
const minJWTSecretLength = 32

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validCacheBackends = map[string]bool{
	"memory": true,
	"badger": true,
	"none":   true,
}

// Validate checks every configuration section.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateTraining(); err != nil {
		return err
	}
	if err := c.validatePopularity(); err != nil {
		return err
	}
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateServing(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
	case "jwt":
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
		}
		if c.Security.TokenTTL <= 0 {
			return fmt.Errorf("JWT_TOKEN_TTL must be positive when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.Security.UserRatePerSecond < 0 || c.Security.UserRateBurst < 0 {
		return fmt.Errorf("USER_RATE_PER_SECOND and USER_RATE_BURST must be >= 0")
	}
	return nil
}

func (c *Config) validateTraining() error {
	t := &c.Training
	if t.MinItemRatings < 1 || t.MinUserRatings < 1 {
		return fmt.Errorf("TRAIN_MIN_ITEM_RATINGS and TRAIN_MIN_USER_RATINGS must be >= 1")
	}
	if t.Rank < 1 {
		return fmt.Errorf("TRAIN_RANK must be >= 1")
	}
	if t.MaxIterations < 1 {
		return fmt.Errorf("TRAIN_MAX_ITERATIONS must be >= 1")
	}
	if t.Tolerance <= 0 {
		return fmt.Errorf("TRAIN_TOLERANCE must be positive")
	}
	if t.NumWorkers < 0 {
		return fmt.Errorf("TRAIN_WORKERS must be >= 0")
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("TRAIN_TIMEOUT must be positive")
	}
	if t.Interval < 0 {
		return fmt.Errorf("TRAIN_INTERVAL must be >= 0")
	}
	return nil
}

func (c *Config) validatePopularity() error {
	p := &c.Popularity
	if p.Percentile <= 0 || p.Percentile > 1 {
		return fmt.Errorf("POPULARITY_PERCENTILE must be in (0, 1]")
	}
	if p.BaselineFloor < 1 {
		return fmt.Errorf("POPULARITY_BASELINE_FLOOR must be >= 1")
	}
	if p.TableSize < 1 {
		return fmt.Errorf("POPULARITY_TABLE_SIZE must be >= 1")
	}
	return nil
}

func (c *Config) validateModel() error {
	if c.Model.Path == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}
	if c.Model.KeepVersions < 1 {
		return fmt.Errorf("MODEL_KEEP_VERSIONS must be >= 1")
	}
	return nil
}

func (c *Config) validateServing() error {
	s := &c.Serving
	if s.DefaultLimit < 1 || s.MaxLimit < s.DefaultLimit {
		return fmt.Errorf("SERVING_DEFAULT_LIMIT must be >= 1 and <= SERVING_MAX_LIMIT")
	}
	if !validCacheBackends[s.CacheBackend] {
		return fmt.Errorf("SERVING_CACHE_BACKEND must be one of: memory, badger, none")
	}
	if s.CacheBackend == "badger" && s.CachePath == "" {
		return fmt.Errorf("SERVING_CACHE_PATH is required when SERVING_CACHE_BACKEND=badger")
	}
	if s.CacheBackend != "none" && s.CacheTTL <= 0 {
		return fmt.Errorf("SERVING_CACHE_TTL must be positive")
	}
	if s.RatedLookupTimeout <= 0 {
		return fmt.Errorf("SERVING_RATED_LOOKUP_TIMEOUT must be positive")
	}
	if s.BreakerFailures < 1 {
		return fmt.Errorf("SERVING_BREAKER_FAILURES must be >= 1")
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.Enabled() && len([]rune(c.Import.Delimiter)) != 1 {
		return fmt.Errorf("IMPORT_DELIMITER must be a single character")
	}
	return nil
}

func (c *Config) validateLogging() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
