// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

/*
Package cache stores encoded recommendation responses.

Two backends implement Cacher:

  - LRUCache: in-process, bounded by entry count, lazy TTL expiry.
  - BadgerCache: BadgerDB-backed, entries expire through badger's TTL.
    Survives restarts when given a directory; in-memory when the path is empty.

New selects a backend from Config; the "none" backend yields a nil Cacher,
which the serving engine treats as caching disabled.

# Keys

The serving engine builds keys as

	rec:v{bundle version}:{user id}:{limit}

so a retrained bundle never reads responses computed by its predecessor.
Entries still expire after the configured TTL because a user's rated set
can change while the bundle does not.

# Metrics

Every lookup is counted in cache_hits_total / cache_misses_total with the
backend name as cache_type. LRUCache also reports cache_entries and
cache_evictions_total.
*/
package cache
