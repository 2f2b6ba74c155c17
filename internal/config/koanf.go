// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/readora/config.yaml",
	"/etc/readora/config.yml",
}

// ConfigPathEnvVar names the environment variable holding a config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "/data/readora.duckdb",
			MaxMemory:    "2GB",
			Threads:      0,
			QueryTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Port:    8080,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:          "none",
			TokenTTL:          24 * time.Hour,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			UserRatePerSecond: 5,
			UserRateBurst:     20,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Training: TrainingConfig{
			MinItemRatings: 10,
			MinUserRatings: 10,
			Rank:           30,
			MaxIterations:  200,
			Tolerance:      1e-4,
			Seed:           42,
			Timeout:        30 * time.Minute,
		},
		Popularity: PopularityConfig{
			Percentile:    0.90,
			BaselineFloor: 1,
			TableSize:     100,
		},
		Model: ModelConfig{
			Path:         "/data/models",
			KeepVersions: 3,
		},
		Serving: ServingConfig{
			DefaultLimit:       10,
			MaxLimit:           100,
			CacheBackend:       "memory",
			CachePath:          "/data/cache",
			CacheTTL:           5 * time.Minute,
			CacheSize:          10000,
			RatedLookupTimeout: 2 * time.Second,
			BreakerFailures:    5,
			BreakerTimeout:     30 * time.Second,
		},
		Import: ImportConfig{
			Delimiter: ";",
		},
	}
}

// LoadWithKoanf builds the layered configuration and validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Database
	"duckdb_path":          "database.path",
	"duckdb_max_memory":    "database.max_memory",
	"duckdb_threads":       "database.threads",
	"duckdb_query_timeout": "database.query_timeout",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	// Security
	"auth_mode":            "security.auth_mode",
	"jwt_secret":           "security.jwt_secret",
	"jwt_token_ttl":        "security.token_ttl",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"disable_rate_limit":   "security.rate_limit_disabled",
	"user_rate_per_second": "security.user_rate_per_second",
	"user_rate_burst":      "security.user_rate_burst",
	"cors_origins":         "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Training
	"train_min_item_ratings": "training.min_item_ratings",
	"train_min_user_ratings": "training.min_user_ratings",
	"train_rank":             "training.rank",
	"train_max_iterations":   "training.max_iterations",
	"train_tolerance":        "training.tolerance",
	"train_seed":             "training.seed",
	"train_workers":          "training.num_workers",
	"train_timeout":          "training.timeout",
	"train_interval":         "training.interval",

	// Popularity
	"popularity_percentile":     "popularity.percentile",
	"popularity_baseline_floor": "popularity.baseline_floor",
	"popularity_table_size":     "popularity.table_size",

	// Model bundle
	"model_path":          "model.path",
	"model_keep_versions": "model.keep_versions",

	// Serving
	"serving_default_limit":        "serving.default_limit",
	"serving_max_limit":            "serving.max_limit",
	"serving_cache_backend":        "serving.cache_backend",
	"serving_cache_path":           "serving.cache_path",
	"serving_cache_ttl":            "serving.cache_ttl",
	"serving_cache_size":           "serving.cache_size",
	"serving_rated_lookup_timeout": "serving.rated_lookup_timeout",
	"serving_breaker_failures":     "serving.breaker_failures",
	"serving_breaker_timeout":      "serving.breaker_timeout",

	// CSV import
	"import_books_csv":   "import.books_csv",
	"import_users_csv":   "import.users_csv",
	"import_ratings_csv": "import.ratings_csv",
	"import_delimiter":   "import.delimiter",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
