// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCSV(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	src := CSVSources{
		BooksCSV: writeCSV(t, dir, "Books.csv",
			`"ISBN";"Book-Title";"Book-Author";"Year-Of-Publication";"Publisher";"Image-URL-S";"Image-URL-M";"Image-URL-L"`,
			`"0195153448";"Classical Mythology";"Mark P. O. Morford";"2002";"Oxford University Press";"s";"m";"l"`,
			`"0002005018";"Clara Callan";"Richard Bruce Wright";"2001";"HarperFlamingo Canada";"s2";"m2";"l2"`,
		),
		UsersCSV: writeCSV(t, dir, "Users.csv",
			`"User-ID";"Location";"Age"`,
			`"1";"nyc, new york, usa";NULL`,
			`"2";"stockton, california, usa";"18"`,
		),
		RatingsCSV: writeCSV(t, dir, "Ratings.csv",
			`"User-ID";"ISBN";"Book-Rating"`,
			`"276725";"034545104X";"0"`,
			`"276726";"0155061224";"5"`,
			`"276727";"0446520802";"abc"`,
		),
	}

	res, err := db.ImportCSV(ctx, src)
	checkNoError(t, err)
	checkInt64Equal(t, "Books", res.Books, 2)
	checkInt64Equal(t, "Users", res.Users, 2)
	checkInt64Equal(t, "Ratings", res.Ratings, 3)

	b, err := db.Book(ctx, "0195153448")
	checkNoError(t, err)
	checkStringEqual(t, "Title", b.Title, "Classical Mythology")
	checkStringEqual(t, "ImageURL", b.ImageURL, "m")

	_, stats, err := db.Interactions(ctx)
	checkNoError(t, err)
	checkIntEqual(t, "RowsKept", stats.RowsKept, 2)
	checkIntEqual(t, "NonNumeric", stats.NonNumeric, 1)

	// Importing again replaces rather than appends.
	res, err = db.ImportCSV(ctx, CSVSources{RatingsCSV: src.RatingsCSV})
	checkNoError(t, err)
	checkInt64Equal(t, "Ratings after reimport", res.Ratings, 3)
	report, err := db.DatasetReport(ctx)
	checkNoError(t, err)
	checkInt64Equal(t, "rating rows", report.RatingRows, 3)
	checkInt64Equal(t, "books untouched", report.Books, 2)
}

func TestImportCSV_MissingFile(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.ImportCSV(context.Background(), CSVSources{RatingsCSV: filepath.Join(t.TempDir(), "nope.csv")})
	if err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestReadCSVQuery(t *testing.T) {
	q := usersCSV.readCSVQuery("/data/it's.csv", ",")
	for _, want := range []string{
		"INSERT INTO users (user_id, location, age)",
		"read_csv('/data/it''s.csv'",
		"delim = ','",
		"all_varchar = true",
		"names = ['user_id', 'location', 'age']",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
}
