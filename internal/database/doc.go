// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Package database is the DuckDB-backed rating store.
//
// # Overview
//
// The store holds the Book-Crossing style catalogue and rating log plus the
// regenerated popularity table:
//
//   - books: item metadata keyed by ISBN
//   - users: user demographics as delivered
//   - ratings: the raw rating log; book_rating is kept as VARCHAR so that
//     coercion happens in one place and every dropped row can be counted
//   - popular_books: the weighted popularity table, replaced wholesale by
//     every training run
//
// The valid_ratings view applies the same coercion rules as Interactions
// and backs every aggregate query.
//
// # Files
//
//   - database.go: connection lifecycle and context helpers
//   - database_schema.go: tables, view and indexes
//   - ratings.go: interaction snapshot, rated sets, per-item and per-user stats
//   - books.go: metadata lookup and search
//   - popular.go: popularity table persistence
//   - import.go: bulk CSV import through read_csv
//   - report.go: dataset exploration statistics
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	interactions, stats, err := db.Interactions(ctx)
//
// # Thread Safety
//
// DB is safe for concurrent use; database/sql pools connections to a single
// DuckDB instance.
package database
