// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/readora/internal/recommend"
)

// DefaultSearchLimit is the number of search results when none is asked for.
const DefaultSearchLimit = 20

// BookRow is one row of the books table as delivered.
type BookRow struct {
	ISBN      string
	Title     string
	Author    string
	Year      string
	Publisher string
	ImageURLS string
	ImageURLM string
	ImageURLL string
}

// bookColumns selects a recommend.Book; the medium cover is the display image.
const bookColumns = `isbn, title, author, year_of_publication, publisher, image_url_m`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(s rowScanner) (recommend.Book, error) {
	var b recommend.Book
	var title, author, year, publisher, imageURL sql.NullString
	if err := s.Scan(&b.ISBN, &title, &author, &year, &publisher, &imageURL); err != nil {
		return b, err
	}
	b.Title = title.String
	b.Author = author.String
	b.Year = year.String
	b.Publisher = publisher.String
	b.ImageURL = imageURL.String
	return b, nil
}

func (db *DB) queryBooks(ctx context.Context, query string, args ...interface{}) ([]recommend.Book, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer closeWithLog(rows, "rows")

	books := make([]recommend.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// AllBooks returns the whole catalogue.
func (db *DB) AllBooks(ctx context.Context) ([]recommend.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return db.queryBooks(ctx, `SELECT `+bookColumns+` FROM books`)
}

// Book returns the metadata of one ISBN, or ErrNotFound.
func (db *DB) Book(ctx context.Context, isbn string) (*recommend.Book, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = ? LIMIT 1`, strings.TrimSpace(isbn))
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %s: %w", isbn, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return &b, nil
}

// Books returns the metadata of the given ISBNs that exist, keyed by ISBN.
func (db *DB) Books(ctx context.Context, isbns []string) (map[string]recommend.Book, error) {
	out := make(map[string]recommend.Book, len(isbns))
	if len(isbns) == 0 {
		return out, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := make([]string, len(isbns))
	args := make([]interface{}, len(isbns))
	for i, isbn := range isbns {
		placeholders[i] = "?"
		args[i] = isbn
	}
	//nolint:gosec // only placeholders are interpolated
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn IN (` + strings.Join(placeholders, ", ") + `)`
	books, err := db.queryBooks(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if _, seen := out[books[i].ISBN]; !seen {
			out[books[i].ISBN] = books[i]
		}
	}
	return out, nil
}

// escapeLike escapes LIKE wildcards so q matches literally.
func escapeLike(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(q)
}

// SearchBooks finds books whose title or author contains q, ignoring case.
func (db *DB) SearchBooks(ctx context.Context, q string, limit int) ([]recommend.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []recommend.Book{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	pattern := "%" + escapeLike(q) + "%"
	return db.queryBooks(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE title ILIKE ? ESCAPE '\' OR author ILIKE ? ESCAPE '\'
		ORDER BY title, isbn
		LIMIT ?`, pattern, pattern, limit)
}

// InsertBooks appends catalogue rows.
func (db *DB) InsertBooks(ctx context.Context, books []BookRow) (err error) {
	if len(books) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO books (
		isbn, title, author, year_of_publication, publisher, image_url_s, image_url_m, image_url_l
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare book insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := range books {
		b := &books[i]
		if _, err = stmt.ExecContext(ctx, b.ISBN, b.Title, b.Author, b.Year, b.Publisher,
			b.ImageURLS, b.ImageURLM, b.ImageURLL); err != nil {
			return fmt.Errorf("insert book %s: %w", b.ISBN, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit books: %w", err)
	}
	return nil
}
