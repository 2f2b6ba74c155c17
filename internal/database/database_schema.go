// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the tables and the valid_ratings view
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS books (
			isbn VARCHAR NOT NULL,
			title VARCHAR,
			author VARCHAR,
			year_of_publication VARCHAR,
			publisher VARCHAR,
			image_url_s VARCHAR,
			image_url_m VARCHAR,
			image_url_l VARCHAR
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			user_id VARCHAR NOT NULL,
			location VARCHAR,
			age VARCHAR
		)`,

		`CREATE SEQUENCE IF NOT EXISTS ratings_seq START 1`,

		// book_rating stays VARCHAR: coercion is counted, not enforced.
		`CREATE TABLE IF NOT EXISTS ratings (
			seq BIGINT DEFAULT nextval('ratings_seq'),
			user_id VARCHAR,
			isbn VARCHAR,
			book_rating VARCHAR
		)`,

		`CREATE TABLE IF NOT EXISTS popular_books (
			rank INTEGER NOT NULL,
			isbn VARCHAR NOT NULL,
			score DOUBLE NOT NULL,
			rating_count INTEGER NOT NULL,
			mean_rating DOUBLE NOT NULL,
			title VARCHAR,
			author VARCHAR,
			image_url VARCHAR,
			generated_at TIMESTAMP NOT NULL
		)`,

		fmt.Sprintf(`CREATE OR REPLACE VIEW valid_ratings AS
		SELECT
			seq,
			TRIM(user_id) AS user_id,
			TRIM(isbn) AS isbn,
			TRY_CAST(TRIM(book_rating) AS DOUBLE) AS rating
		FROM ratings
		WHERE TRIM(COALESCE(user_id, '')) <> ''
			AND TRIM(COALESCE(isbn, '')) <> ''
			AND TRY_CAST(TRIM(book_rating) AS DOUBLE) BETWEEN %g AND %g`, minRating, maxRating),
	}
}

// createIndexes creates lookup indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_books_isbn ON books(isbn);`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_isbn ON ratings(isbn);`,
		`CREATE INDEX IF NOT EXISTS idx_popular_rank ON popular_books(rank);`,
	}
	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}
	return nil
}
