// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"testing"
)

// mappingFor builds a mapping whose dense indices follow the given order.
func mappingFor(t *testing.T, users, items []string) *IndexMapping {
	t.Helper()
	tables := MappingTables{
		IndexToUser: users,
		UserToIndex: make(map[string]int, len(users)),
		IndexToItem: items,
		ItemToIndex: make(map[string]int, len(items)),
	}
	for i, id := range users {
		tables.UserToIndex[id] = i
	}
	for i, id := range items {
		tables.ItemToIndex[id] = i
	}
	m, err := RestoreIndexMapping(tables)
	if err != nil {
		t.Fatalf("RestoreIndexMapping() error = %v", err)
	}
	return m
}

// bundleFor builds a bundle from row-major factors. Every item gets a book
// unless listed in withoutBook.
func bundleFor(t *testing.T, users, items []string, rank int, userData, itemData []float64, withoutBook ...string) *ModelBundle {
	t.Helper()
	factors, err := NewFactorModel(len(users), len(items), rank, userData, itemData, TrainingInfo{Algorithm: "test", Rank: rank})
	if err != nil {
		t.Fatalf("NewFactorModel() error = %v", err)
	}
	skip := make(map[string]bool, len(withoutBook))
	for _, id := range withoutBook {
		skip[id] = true
	}
	books := make([]Book, 0, len(items))
	for _, id := range items {
		if !skip[id] {
			books = append(books, Book{ISBN: id, Title: "Title " + id})
		}
	}
	b, err := NewModelBundle(factors, mappingFor(t, users, items), books)
	if err != nil {
		t.Fatalf("NewModelBundle() error = %v", err)
	}
	return b
}

func ratedSet(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func checkItemIDs(t *testing.T, got []RankedItem, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d items %v, want %v", len(got), rankedIDs(got), want)
	}
	for i := range want {
		if got[i].ItemID != want[i] {
			t.Fatalf("items = %v, want %v", rankedIDs(got), want)
		}
	}
}

func rankedIDs(items []RankedItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ItemID
	}
	return out
}
