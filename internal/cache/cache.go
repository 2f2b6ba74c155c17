// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package cache

import (
	"fmt"
	"time"
)

// Cacher is a byte-valued cache with bounded entry lifetime.
type Cacher interface {
	// Get returns the value and true if found and not expired.
	Get(key string) ([]byte, bool)

	// Set stores a value with the cache's TTL.
	Set(key string, value []byte)

	// Delete removes a value.
	Delete(key string)

	// Len returns the number of live entries.
	Len() int

	// Close releases backend resources.
	Close() error
}

// Type selects a cache backend.
type Type string

const (
	TypeMemory Type = "memory"
	TypeBadger Type = "badger"
	TypeNone   Type = "none"
)

const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 10000
)

// Config holds configuration for creating a cache.
type Config struct {
	Type Type

	// TTL is the lifetime of every entry.
	TTL time.Duration

	// Capacity bounds the memory backend.
	Capacity int

	// Path is the badger directory; empty runs badger in memory.
	Path string
}

// New creates the configured cache. TypeNone returns a nil Cacher.
func New(cfg Config) (Cacher, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	switch cfg.Type {
	case TypeNone:
		return nil, nil
	case TypeBadger:
		c, err := OpenBadger(cfg.Path, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case TypeMemory, "":
		return NewLRUCache(cfg.Capacity, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

var (
	_ Cacher = (*LRUCache)(nil)
	_ Cacher = (*BadgerCache)(nil)
)
