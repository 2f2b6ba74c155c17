// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package algorithms

import (
	"context"
	"sync"
	"time"
)

// BaseAlgorithm tracks identity and run history shared by factorizers.
type BaseAlgorithm struct {
	name          string
	runs          int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{name: name}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// Runs returns how many factorizations completed.
func (b *BaseAlgorithm) Runs() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.runs
}

// LastTrainedAt returns when the last factorization completed.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

func (b *BaseAlgorithm) markTrained(at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runs++
	b.lastTrainedAt = at
}

// ContextCancelled reports whether ctx is done without blocking.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// parallelChunks splits [0, n) into contiguous chunks and runs fn on each
// chunk in its own goroutine.
func parallelChunks(n, workers int, fn func(start, end int)) {
	if n == 0 {
		return
	}
	if workers <= 1 || n == 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
