// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package cache

import (
	"testing"
	"time"
)

func openTestBadger(t *testing.T, path string, ttl time.Duration) *BadgerCache {
	t.Helper()
	c, err := OpenBadger(path, ttl)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	return c
}

func TestBadgerCache_BasicOperations(t *testing.T) {
	c := openTestBadger(t, "", time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	if _, ok := c.Get("rec:v1:u1:10"); ok {
		t.Error("Get on empty cache found a value")
	}

	c.Set("rec:v1:u1:10", []byte(`{"items":[]}`))
	c.Set("rec:v1:u2:10", []byte(`{}`))

	v, ok := c.Get("rec:v1:u1:10")
	if !ok || string(v) != `{"items":[]}` {
		t.Errorf("Get() = %q, %v", v, ok)
	}
	if n := c.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}

	c.Delete("rec:v1:u1:10")
	if _, ok := c.Get("rec:v1:u1:10"); ok {
		t.Error("deleted key still readable")
	}
	if n := c.Len(); n != 1 {
		t.Errorf("Len() = %d after delete, want 1", n)
	}
}

func TestBadgerCache_Expiry(t *testing.T) {
	if testing.Short() {
		t.Skip("badger TTLs have one-second resolution")
	}
	c := openTestBadger(t, "", time.Second)
	t.Cleanup(func() { _ = c.Close() })

	c.Set("k", []byte("v"))
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry not found")
	}

	time.Sleep(2100 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry readable after its TTL")
	}
}

func TestBadgerCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	c := openTestBadger(t, dir, time.Hour)
	c.Set("k", []byte("durable"))
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := openTestBadger(t, dir, time.Hour)
	t.Cleanup(func() { _ = reopened.Close() })
	if v, ok := reopened.Get("k"); !ok || string(v) != "durable" {
		t.Errorf("Get() after reopen = %q, %v", v, ok)
	}
}
