// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused subject bucket is kept.
const limiterIdleTTL = time.Hour

// SubjectLimiter keeps one token bucket per authenticated subject.
type SubjectLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
	stopOnce  sync.Once
	now       func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewSubjectLimiter allows perSecond requests per subject with the given
// burst. A non-positive rate disables limiting and returns nil.
func NewSubjectLimiter(perSecond float64, burst int) *SubjectLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &SubjectLimiter{
		limiters:  make(map[string]*limiterEntry),
		rate:      rate.Limit(perSecond),
		burst:     burst,
		stopClean: make(chan struct{}),
		now:       time.Now,
	}
}

// Allow reports whether subject may make a request now. A nil limiter
// allows everything.
func (l *SubjectLimiter) Allow(subject string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[subject]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[subject] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Len returns the number of tracked subjects.
func (l *SubjectLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// StartCleanup removes idle buckets every interval until Stop is called.
func (l *SubjectLimiter) StartCleanup(interval time.Duration) {
	if l == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.cleanup()
			case <-l.stopClean:
				return
			}
		}
	}()
}

func (l *SubjectLimiter) cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := l.now().Add(-limiterIdleTTL)
	removed := 0
	for subject, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, subject)
			removed++
		}
	}
	return removed
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *SubjectLimiter) Stop() {
	if l == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.stopClean) })
}
