// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/readora/internal/metrics"
)

const lruMetricLabel = string(TypeMemory)

// lruEntry is a node of the recency list.
type lruEntry struct {
	key       string
	value     []byte
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// LRUCache is a thread-safe least recently used cache with a fixed TTL.
// A hashmap gives O(1) lookup and a doubly-linked list with sentinels gives
// O(1) reordering and eviction. Expired entries are dropped lazily on Get
// or in bulk by CleanupExpired.
type LRUCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	now      func() time.Time

	items map[string]*lruEntry

	// head.next is the most recently used, tail.prev the least.
	head *lruEntry
	tail *lruEntry

	hits   int64
	misses int64
}

// NewLRUCache creates a cache holding at most capacity entries for ttl each.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*lruEntry, min(capacity, 1024)),
		head:     &lruEntry{},
		tail:     &lruEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns a copy-free view of the stored value. Callers must not modify it.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[key]
	if ok && c.now().After(entry.expiresAt) {
		c.removeEntry(entry)
		metrics.CacheEvictions.WithLabelValues(lruMetricLabel).Inc()
		ok = false
	}
	if !ok {
		c.misses++
		metrics.RecordCacheLookup(lruMetricLabel, false)
		return nil, false
	}

	c.moveToFront(entry)
	c.hits++
	metrics.RecordCacheLookup(lruMetricLabel, true)
	return entry.value, true
}

// Set adds or replaces an entry, evicting the least recently used entries
// when over capacity.
func (c *LRUCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if entry, ok := c.items[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &lruEntry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
	metrics.CacheSize.WithLabelValues(lruMetricLabel).Set(float64(len(c.items)))
}

// Delete removes an entry if present.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.removeEntry(entry)
	}
}

// Len returns the number of stored entries, including expired ones not yet
// collected.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruEntry, min(c.capacity, 1024))
	c.head.next = c.tail
	c.tail.prev = c.head
	metrics.CacheSize.WithLabelValues(lruMetricLabel).Set(0)
}

// CleanupExpired removes every expired entry and returns how many were removed.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for entry := c.tail.prev; entry != c.head; {
		prev := entry.prev
		if now.After(entry.expiresAt) {
			c.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	if removed > 0 {
		metrics.CacheEvictions.WithLabelValues(lruMetricLabel).Add(float64(removed))
		metrics.CacheSize.WithLabelValues(lruMetricLabel).Set(float64(len(c.items)))
	}
	return removed
}

// Stats returns hit/miss counts and the current size.
func (c *LRUCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Close is a no-op for the in-memory backend.
func (c *LRUCache) Close() error {
	return nil
}

// Internal methods (must be called with lock held)

func (c *LRUCache) addToFront(entry *lruEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *LRUCache) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *LRUCache) removeEntry(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *LRUCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	metrics.CacheEvictions.WithLabelValues(lruMetricLabel).Inc()
}
