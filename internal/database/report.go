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
)

const (
	reportTopLimit       = 50
	reportMinRatingCount = 10
)

// RatingSummary holds descriptive statistics of usable ratings.
type RatingSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// TopRatedBook is a well-rated book with enough ratings to trust the mean.
type TopRatedBook struct {
	ISBN        string  `json:"isbn"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	RatingCount int64   `json:"rating_count"`
	MeanRating  float64 `json:"mean_rating"`
}

// ActiveUser is a user with their rating count.
type ActiveUser struct {
	UserID      string `json:"user_id"`
	RatingCount int64  `json:"rating_count"`
}

// DatasetReport summarizes the contents of the rating store.
type DatasetReport struct {
	Books             int64          `json:"books"`
	Users             int64          `json:"users"`
	RatingRows        int64          `json:"rating_rows"`
	ValidRatings      int64          `json:"valid_ratings"`
	UniqueRatingUsers int64          `json:"unique_rating_users"`
	UniqueRatedBooks  int64          `json:"unique_rated_books"`
	DuplicateRows     int64          `json:"duplicate_rows"`
	DuplicatePairs    int64          `json:"duplicate_user_book_pairs"`
	ImplicitRatings   int64          `json:"implicit_ratings"`
	ExplicitRatings   int64          `json:"explicit_ratings"`
	ISBNMatchPercent  float64        `json:"isbn_match_percent"`
	Ratings           RatingSummary  `json:"rating_summary"`
	Distribution      []RatingBucket `json:"distribution"`
	TopRated          []TopRatedBook `json:"top_rated"`
	MostActive        []ActiveUser   `json:"most_active_users"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// DatasetReport computes exploration statistics over the whole store.
func (db *DB) DatasetReport(ctx context.Context) (*DatasetReport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r := &DatasetReport{GeneratedAt: time.Now().UTC()}

	counts := []struct {
		name  string
		query string
		dest  *int64
	}{
		{"books", `SELECT COUNT(*) FROM books`, &r.Books},
		{"users", `SELECT COUNT(*) FROM users`, &r.Users},
		{"rating rows", `SELECT COUNT(*) FROM ratings`, &r.RatingRows},
		{"valid ratings", `SELECT COUNT(*) FROM valid_ratings`, &r.ValidRatings},
		{"rating users", `SELECT COUNT(DISTINCT user_id) FROM valid_ratings`, &r.UniqueRatingUsers},
		{"rated books", `SELECT COUNT(DISTINCT isbn) FROM valid_ratings`, &r.UniqueRatedBooks},
		{"duplicate rows", `SELECT CAST(COALESCE(SUM(n - 1), 0) AS BIGINT) FROM (
			SELECT COUNT(*) AS n FROM ratings GROUP BY user_id, isbn, book_rating HAVING COUNT(*) > 1)`, &r.DuplicateRows},
		{"duplicate pairs", `SELECT COUNT(*) FROM (
			SELECT 1 FROM valid_ratings GROUP BY user_id, isbn HAVING COUNT(*) > 1)`, &r.DuplicatePairs},
		{"implicit ratings", `SELECT COUNT(*) FROM valid_ratings WHERE rating = 0`, &r.ImplicitRatings},
		{"explicit ratings", `SELECT COUNT(*) FROM valid_ratings WHERE rating > 0`, &r.ExplicitRatings},
	}
	for _, c := range counts {
		if err := db.conn.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("query %s: %w", c.name, err)
		}
	}

	var mean, median, lo, hi sql.NullFloat64
	err := db.conn.QueryRowContext(ctx,
		`SELECT AVG(rating), MEDIAN(rating), MIN(rating), MAX(rating) FROM valid_ratings`).
		Scan(&mean, &median, &lo, &hi)
	if err != nil {
		return nil, fmt.Errorf("query rating summary: %w", err)
	}
	r.Ratings = RatingSummary{Mean: mean.Float64, Median: median.Float64, Min: lo.Float64, Max: hi.Float64}

	if r.ValidRatings > 0 {
		var matched int64
		err := db.conn.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM valid_ratings r
			WHERE EXISTS (SELECT 1 FROM books b WHERE b.isbn = r.isbn)`).Scan(&matched)
		if err != nil {
			return nil, fmt.Errorf("query isbn match: %w", err)
		}
		r.ISBNMatchPercent = 100 * float64(matched) / float64(r.ValidRatings)
	}

	if r.Distribution, err = db.ratingDistribution(ctx, ""); err != nil {
		return nil, err
	}
	if r.TopRated, err = db.topRatedBooks(ctx); err != nil {
		return nil, err
	}
	if r.MostActive, err = db.mostActiveUsers(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (db *DB) topRatedBooks(ctx context.Context) ([]TopRatedBook, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.isbn, b.title, b.author, s.n, s.mean
		FROM (
			SELECT isbn, COUNT(*) AS n, AVG(rating) AS mean
			FROM valid_ratings
			GROUP BY isbn
			HAVING COUNT(*) >= ?
		) s
		LEFT JOIN (SELECT DISTINCT ON (isbn) isbn, title, author FROM books) b ON b.isbn = s.isbn
		ORDER BY s.mean DESC, s.n DESC, s.isbn
		LIMIT ?`, reportMinRatingCount, reportTopLimit)
	if err != nil {
		return nil, fmt.Errorf("query top rated books: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]TopRatedBook, 0)
	for rows.Next() {
		var b TopRatedBook
		var title, author sql.NullString
		if err := rows.Scan(&b.ISBN, &title, &author, &b.RatingCount, &b.MeanRating); err != nil {
			return nil, fmt.Errorf("scan top rated book: %w", err)
		}
		b.Title, b.Author = title.String, author.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top rated books: %w", err)
	}
	return out, nil
}

func (db *DB) mostActiveUsers(ctx context.Context) ([]ActiveUser, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, COUNT(*) AS n
		FROM valid_ratings
		GROUP BY user_id
		ORDER BY n DESC, user_id
		LIMIT ?`, reportTopLimit)
	if err != nil {
		return nil, fmt.Errorf("query most active users: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]ActiveUser, 0)
	for rows.Next() {
		var u ActiveUser
		if err := rows.Scan(&u.UserID, &u.RatingCount); err != nil {
			return nil, fmt.Errorf("scan active user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate most active users: %w", err)
	}
	return out, nil
}
