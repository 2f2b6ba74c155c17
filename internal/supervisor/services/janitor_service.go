// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package services

import (
	"context"
	"time"

	"github.com/tomtom215/readora/internal/logging"
)

// ExpiringCache is a cache that can drop its expired entries.
// *cache.LRUCache implements it.
type ExpiringCache interface {
	CleanupExpired() int
}

// JanitorService sweeps expired entries out of an in-memory cache so that
// idle keys do not hold memory until they are evicted by capacity.
type JanitorService struct {
	cache    ExpiringCache
	interval time.Duration
	name     string
}

// NewJanitorService creates a janitor. A non-positive interval means 1m.
func NewJanitorService(c ExpiringCache, interval time.Duration) *JanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JanitorService{cache: c, interval: interval, name: "cache-janitor"}
}

// Serve implements suture.Service.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := j.cache.CleanupExpired(); n > 0 {
				logging.Debug().Int("removed", n).Msg("Expired cache entries removed")
			}
		}
	}
}

// String implements fmt.Stringer.
func (j *JanitorService) String() string {
	return j.name
}
