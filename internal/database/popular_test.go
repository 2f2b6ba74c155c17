// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"testing"

	"github.com/tomtom215/readora/internal/recommend"
)

func TestReplacePopularBooks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := []recommend.PopularBook{
		{Rank: 1, ItemID: "a", Score: 8.5, Count: 40, Mean: 9, Title: "A", Author: "X", ImageURL: "http://img/a"},
		{Rank: 2, ItemID: "b", Score: 7.1, Count: 25, Mean: 7.4},
		{Rank: 3, ItemID: "c", Score: 6.9, Count: 90, Mean: 6.9},
	}
	checkNoError(t, db.ReplacePopularBooks(ctx, first))

	got, err := db.PopularBooks(ctx, 0)
	checkNoError(t, err)
	checkSliceLen(t, "rows", len(got), 3)
	if got[0] != first[0] {
		t.Errorf("row 0 = %+v, want %+v", got[0], first[0])
	}

	limited, err := db.PopularBooks(ctx, 2)
	checkNoError(t, err)
	checkSliceLen(t, "limited", len(limited), 2)
	checkStringEqual(t, "second", limited[1].ItemID, "b")

	at, err := db.PopularGeneratedAt(ctx)
	checkNoError(t, err)
	if at.IsZero() {
		t.Error("PopularGeneratedAt() is zero after a write")
	}

	// A second run replaces the table wholesale.
	second := []recommend.PopularBook{{Rank: 1, ItemID: "z", Score: 5, Count: 10, Mean: 5}}
	checkNoError(t, db.ReplacePopularBooks(ctx, second))
	got, err = db.PopularBooks(ctx, 0)
	checkNoError(t, err)
	checkSliceLen(t, "after replace", len(got), 1)
	checkStringEqual(t, "replaced", got[0].ItemID, "z")

	checkNoError(t, db.ReplacePopularBooks(ctx, nil))
	got, err = db.PopularBooks(ctx, 10)
	checkNoError(t, err)
	checkSliceLen(t, "after clear", len(got), 0)
}

func TestPopularityFromStore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedBooks(t, db, BookRow{ISBN: "b1", Title: "One"}, BookRow{ISBN: "b2", Title: "Two"})
	seedRatings(t, db,
		[3]string{"u1", "b1", "10"},
		[3]string{"u2", "b1", "8"},
		[3]string{"u3", "b1", "9"},
		[3]string{"u1", "b2", "2"},
		[3]string{"u2", "b2", "oops"},
	)

	interactions, _, err := db.Interactions(ctx)
	checkNoError(t, err)
	books, err := db.AllBooks(ctx)
	checkNoError(t, err)
	catalogue := make(map[string]recommend.Book, len(books))
	for _, b := range books {
		catalogue[b.ISBN] = b
	}

	table := recommend.ComputePopularity(interactions, catalogue, recommend.DefaultPopularityConfig())
	checkNoError(t, db.ReplacePopularBooks(ctx, table.Rows))

	got, err := db.PopularBooks(ctx, 0)
	checkNoError(t, err)
	checkSliceLen(t, "rows", len(got), 1)
	checkStringEqual(t, "top", got[0].ItemID, "b1")
	checkStringEqual(t, "title", got[0].Title, "One")
	checkIntEqual(t, "count", got[0].Count, 3)
}
