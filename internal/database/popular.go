// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/readora/internal/recommend"
)

var _ recommend.PopularityWriter = (*DB)(nil)

// ReplacePopularBooks swaps the popularity table for rows in one transaction.
func (db *DB) ReplacePopularBooks(ctx context.Context, rows []recommend.PopularBook) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	if _, err = tx.ExecContext(ctx, `DELETE FROM popular_books`); err != nil {
		return fmt.Errorf("clear popular books: %w", err)
	}

	if len(rows) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, `INSERT INTO popular_books (
			rank, isbn, score, rating_count, mean_rating, title, author, image_url, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare popular insert: %w", err)
		}
		defer closeWithLog(stmt, "prepared statement")

		generatedAt := time.Now().UTC()
		for i := range rows {
			r := &rows[i]
			if _, err = stmt.ExecContext(ctx, r.Rank, r.ItemID, r.Score, r.Count, r.Mean,
				r.Title, r.Author, r.ImageURL, generatedAt); err != nil {
				return fmt.Errorf("insert popular book %s: %w", r.ItemID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit popular books: %w", err)
	}
	return nil
}

// PopularBooks returns the first limit rows of the popularity table in rank
// order. A non-positive limit returns the whole table.
func (db *DB) PopularBooks(ctx context.Context, limit int) ([]recommend.PopularBook, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT rank, isbn, score, rating_count, mean_rating, title, author, image_url
		FROM popular_books ORDER BY rank`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query popular books: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]recommend.PopularBook, 0)
	for rows.Next() {
		var p recommend.PopularBook
		var title, author, imageURL sql.NullString
		if err := rows.Scan(&p.Rank, &p.ItemID, &p.Score, &p.Count, &p.Mean, &title, &author, &imageURL); err != nil {
			return nil, fmt.Errorf("scan popular book: %w", err)
		}
		p.Title, p.Author, p.ImageURL = title.String, author.String, imageURL.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular books: %w", err)
	}
	return out, nil
}

// PopularGeneratedAt returns when the popularity table was last written.
func (db *DB) PopularGeneratedAt(ctx context.Context) (time.Time, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var at sql.NullTime
	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(generated_at) FROM popular_books`).Scan(&at); err != nil {
		return time.Time{}, fmt.Errorf("query popular generation time: %w", err)
	}
	return at.Time, nil
}
