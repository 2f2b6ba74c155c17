// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Package config loads Readora configuration with Koanf v2.
//
// Sources are layered, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH or one of DefaultConfigPaths)
//  3. Environment variables mapped through envTransformFunc
//
// Example config.yaml:
//
//	database:
//	  path: /data/readora.duckdb
//	training:
//	  rank: 30
//	  min_item_ratings: 10
//	  min_user_ratings: 10
//	model:
//	  path: /data/models
//
// The loaded Config is validated before it is returned; both binaries
// (cmd/server and cmd/train) share it.
package config
