// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingCache struct {
	sweeps atomic.Int32
}

func (c *countingCache) CleanupExpired() int {
	c.sweeps.Add(1)
	return 1
}

func TestJanitorService(t *testing.T) {
	c := &countingCache{}
	svc := NewJanitorService(c, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v", err)
	}
	if c.sweeps.Load() < 2 {
		t.Errorf("sweeps = %d, want at least 2", c.sweeps.Load())
	}
	if NewJanitorService(c, 0).interval != time.Minute {
		t.Error("default interval should be 1m")
	}
}
