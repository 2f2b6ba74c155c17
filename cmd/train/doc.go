// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Command train runs the offline half of Readora.
//
// It optionally imports the Book-Crossing CSV files into the DuckDB rating
// store and logs a dataset report. It then filters interactions, maps them
// to a sparse matrix and factorizes it with NMF. The resulting model bundle
// is saved as a new version under model.path and the popularity table is
// regenerated in the database.
//
// By default train runs once, prints the training report as JSON on stdout
// and exits non-zero on failure. With training.interval set it stays up
// under a supervisor tree and retrains on that schedule. cmd/server loads
// bundles at start-up only, so restart it to serve a new one.
//
//	IMPORT_BOOKS_CSV=data/Books.csv \
//	IMPORT_USERS_CSV=data/Users.csv \
//	IMPORT_RATINGS_CSV=data/Ratings.csv \
//	IMPORT_DELIMITER=";" train
//
//	TRAIN_INTERVAL=24h train -skip-import
//
// Flags:
//
//	-skip-import   ignore configured CSV sources
//	-report-only   log the dataset report and exit without training
package main
