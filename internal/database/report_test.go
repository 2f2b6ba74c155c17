// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"fmt"
	"testing"
)

func TestDatasetReport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedBooks(t, db, BookRow{ISBN: "pop", Title: "Popular"}, BookRow{ISBN: "b2", Title: "Second"})

	var triples [][3]string
	for i := 0; i < 12; i++ {
		triples = append(triples, [3]string{fmt.Sprintf("u%02d", i), "pop", "8"})
	}
	triples = append(triples,
		[3]string{"u00", "b2", "0"},
		[3]string{"u00", "b2", "0"}, // exact duplicate
		[3]string{"u01", "orphan", "4"},
		[3]string{"u01", "orphan", "junk"},
	)
	seedRatings(t, db, triples...)

	r, err := db.DatasetReport(ctx)
	checkNoError(t, err)

	checkInt64Equal(t, "Books", r.Books, 2)
	checkInt64Equal(t, "RatingRows", r.RatingRows, 16)
	checkInt64Equal(t, "ValidRatings", r.ValidRatings, 15)
	checkInt64Equal(t, "UniqueRatingUsers", r.UniqueRatingUsers, 12)
	checkInt64Equal(t, "UniqueRatedBooks", r.UniqueRatedBooks, 3)
	checkInt64Equal(t, "DuplicateRows", r.DuplicateRows, 1)
	checkInt64Equal(t, "DuplicatePairs", r.DuplicatePairs, 1)
	checkInt64Equal(t, "ImplicitRatings", r.ImplicitRatings, 2)
	checkInt64Equal(t, "ExplicitRatings", r.ExplicitRatings, 13)
	checkFloatNear(t, "ISBNMatchPercent", r.ISBNMatchPercent, 100*14.0/15.0)
	checkFloatNear(t, "Min", r.Ratings.Min, 0)
	checkFloatNear(t, "Max", r.Ratings.Max, 8)
	checkFloatNear(t, "Median", r.Ratings.Median, 8)

	checkSliceLen(t, "TopRated", len(r.TopRated), 1)
	checkStringEqual(t, "top rated", r.TopRated[0].ISBN, "pop")
	checkInt64Equal(t, "top rated count", r.TopRated[0].RatingCount, 12)

	checkStringEqual(t, "most active", r.MostActive[0].UserID, "u00")
	checkInt64Equal(t, "most active count", r.MostActive[0].RatingCount, 3)

	checkSliceLen(t, "Distribution", len(r.Distribution), 3)
}

func TestDatasetReport_Empty(t *testing.T) {
	db := setupTestDB(t)

	r, err := db.DatasetReport(context.Background())
	checkNoError(t, err)
	checkInt64Equal(t, "RatingRows", r.RatingRows, 0)
	checkFloatNear(t, "ISBNMatchPercent", r.ISBNMatchPercent, 0)
	checkSliceLen(t, "TopRated", len(r.TopRated), 0)
}
