// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/readora/internal/logging"
	"github.com/tomtom215/readora/internal/metrics"
)

// Key prefix for namespacing cached responses in BadgerDB.
const badgerKeyPrefix = "resp:"

const badgerMetricLabel = string(TypeBadger)

// BadgerCache implements Cacher on BadgerDB. Expiry is delegated to badger
// entry TTLs, so expired values are never returned.
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger opens a badger cache at path. An empty path keeps everything in
// memory.
func OpenBadger(path string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		// Cached responses are small; the default 1GB value log is wasteful.
		opts.ValueLogFileSize = 16 << 20
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return NewBadgerCache(db, ttl), nil
}

// NewBadgerCache wraps an existing badger database.
func NewBadgerCache(db *badger.DB, ttl time.Duration) *BadgerCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BadgerCache{db: db, ttl: ttl}
}

// Get returns a copy of the stored value.
func (c *BadgerCache) Get(key string) ([]byte, bool) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.Warn().Err(err).Str("key", key).Msg("badger cache read failed")
		}
		metrics.RecordCacheLookup(badgerMetricLabel, false)
		return nil, false
	}
	metrics.RecordCacheLookup(badgerMetricLabel, true)
	return value, true
}

// Set stores value with the cache TTL. Write failures are logged and dropped.
func (c *BadgerCache) Set(key string, value []byte) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(badgerKeyPrefix+key), value).WithTTL(c.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("badger cache write failed")
	}
}

// Delete removes key.
func (c *BadgerCache) Delete(key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("badger cache delete failed")
	}
}

// Len counts live entries by iterating keys.
func (c *BadgerCache) Len() int {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("badger cache count failed")
	}
	return n
}

// Close closes the underlying database.
func (c *BadgerCache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close badger cache: %w", err)
	}
	return nil
}
