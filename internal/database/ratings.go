// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/readora/internal/logging"
	"github.com/tomtom215/readora/internal/recommend"
)

const (
	minRating = recommend.MinRating
	maxRating = recommend.MaxRating

	// highRating is the threshold for the "highly rated" list of a user.
	highRating = 9.0

	highlyRatedLimit = 50
)

// RatingRow is one raw row of the ratings table.
type RatingRow struct {
	UserID string
	ISBN   string
	Rating string
}

// RatedBook is a book a user rated, with the rating.
type RatedBook struct {
	recommend.Book
	Rating float64 `json:"rating"`
}

// RatingBucket counts ratings with the same integer value.
type RatingBucket struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

// UserRatingSummary describes what a user has rated.
type UserRatingSummary struct {
	UserID       string         `json:"user_id"`
	Total        int64          `json:"total_ratings"`
	Explicit     int64          `json:"explicit_ratings"`
	Implicit     int64          `json:"implicit_ratings"`
	MeanExplicit float64        `json:"mean_explicit_rating"`
	HighlyRated  []RatedBook    `json:"highly_rated"`
	Distribution []RatingBucket `json:"distribution"`
}

// coerceRating classifies a raw row. ok is false when the row is dropped;
// stats is updated either way.
func coerceRating(row RatingRow, stats *recommend.IngestStats) (recommend.Interaction, bool) {
	stats.RowsRead++
	user := strings.TrimSpace(row.UserID)
	isbn := strings.TrimSpace(row.ISBN)
	if user == "" || isbn == "" {
		stats.BlankIDs++
		return recommend.Interaction{}, false
	}
	rating, err := strconv.ParseFloat(strings.TrimSpace(row.Rating), 64)
	if err != nil || math.IsNaN(rating) || math.IsInf(rating, 0) {
		stats.NonNumeric++
		return recommend.Interaction{}, false
	}
	if rating < minRating || rating > maxRating {
		stats.OutOfRange++
		return recommend.Interaction{}, false
	}
	stats.RowsKept++
	return recommend.Interaction{UserID: user, ItemID: isbn, Rating: rating}, true
}

// Interactions returns every usable rating in insertion order. Blank ids,
// non-numeric and out-of-range ratings are dropped and counted.
func (db *DB) Interactions(ctx context.Context) ([]recommend.Interaction, recommend.IngestStats, error) {
	var stats recommend.IngestStats
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT user_id, isbn, book_rating FROM ratings ORDER BY seq`)
	if err != nil {
		return nil, stats, fmt.Errorf("query ratings: %w", err)
	}
	defer closeWithLog(rows, "rows")

	interactions := make([]recommend.Interaction, 0, 1024)
	for rows.Next() {
		var user, isbn, rating sql.NullString
		if err := rows.Scan(&user, &isbn, &rating); err != nil {
			return nil, stats, fmt.Errorf("scan rating: %w", err)
		}
		in, ok := coerceRating(RatingRow{UserID: user.String, ISBN: isbn.String, Rating: rating.String}, &stats)
		if ok {
			interactions = append(interactions, in)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, stats, fmt.Errorf("iterate ratings: %w", err)
	}

	if stats.Dropped() > 0 {
		logging.Warn().
			Int("non_numeric", stats.NonNumeric).
			Int("out_of_range", stats.OutOfRange).
			Int("blank_ids", stats.BlankIDs).
			Msg("Dropped unusable rating rows")
	}
	return interactions, stats, nil
}

// InsertRatings appends raw rating rows.
func (db *DB) InsertRatings(ctx context.Context, ratings []RatingRow) (err error) {
	if len(ratings) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ratings (user_id, isbn, book_rating) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare rating insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := range ratings {
		if _, err = stmt.ExecContext(ctx, ratings[i].UserID, ratings[i].ISBN, ratings[i].Rating); err != nil {
			return fmt.Errorf("insert rating %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit ratings: %w", err)
	}
	return nil
}

// RatedItems returns the ISBNs a user has a usable rating for.
func (db *DB) RatedItems(ctx context.Context, userID string) (map[string]struct{}, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT isbn FROM valid_ratings WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query rated items: %w", err)
	}
	defer closeWithLog(rows, "rows")

	rated := make(map[string]struct{})
	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, fmt.Errorf("scan rated item: %w", err)
		}
		rated[isbn] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rated items: %w", err)
	}
	return rated, nil
}

// ItemRatingStats returns the number of usable ratings of a book and their mean.
func (db *DB) ItemRatingStats(ctx context.Context, isbn string) (int64, float64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		count int64
		mean  sql.NullFloat64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(rating) FROM valid_ratings WHERE isbn = ?`, isbn).Scan(&count, &mean)
	if err != nil {
		return 0, 0, fmt.Errorf("query item rating stats: %w", err)
	}
	return count, mean.Float64, nil
}

// UserRatingSummary describes a user's ratings. An unknown user yields an
// empty summary, not an error.
func (db *DB) UserRatingSummary(ctx context.Context, userID string) (*UserRatingSummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	summary := &UserRatingSummary{
		UserID:       userID,
		HighlyRated:  []RatedBook{},
		Distribution: []RatingBucket{},
	}

	var mean sql.NullFloat64
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE rating > 0),
			COUNT(*) FILTER (WHERE rating = 0),
			AVG(rating) FILTER (WHERE rating > 0)
		FROM valid_ratings
		WHERE user_id = ?`, userID).Scan(&summary.Total, &summary.Explicit, &summary.Implicit, &mean)
	if err != nil {
		return nil, fmt.Errorf("query user rating totals: %w", err)
	}
	summary.MeanExplicit = mean.Float64
	if summary.Total == 0 {
		return summary, nil
	}

	if summary.HighlyRated, err = db.highlyRated(ctx, userID); err != nil {
		return nil, err
	}
	if summary.Distribution, err = db.ratingDistribution(ctx, "WHERE user_id = ?", userID); err != nil {
		return nil, err
	}
	return summary, nil
}

func (db *DB) highlyRated(ctx context.Context, userID string) ([]RatedBook, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.isbn, r.rating, b.title, b.author, b.year_of_publication, b.publisher, b.image_url_m
		FROM valid_ratings r
		LEFT JOIN (
			SELECT DISTINCT ON (isbn) * FROM books
		) b ON b.isbn = r.isbn
		WHERE r.user_id = ? AND r.rating >= ?
		ORDER BY r.rating DESC, r.isbn
		LIMIT ?`, userID, highRating, highlyRatedLimit)
	if err != nil {
		return nil, fmt.Errorf("query highly rated books: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]RatedBook, 0)
	for rows.Next() {
		var rb RatedBook
		var title, author, year, publisher, imageURL sql.NullString
		if err := rows.Scan(&rb.ISBN, &rb.Rating, &title, &author, &year, &publisher, &imageURL); err != nil {
			return nil, fmt.Errorf("scan highly rated book: %w", err)
		}
		rb.Title, rb.Author, rb.Year = title.String, author.String, year.String
		rb.Publisher, rb.ImageURL = publisher.String, imageURL.String
		out = append(out, rb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate highly rated books: %w", err)
	}
	return out, nil
}

// ratingDistribution counts valid ratings by integer value. where filters
// valid_ratings and may be empty.
func (db *DB) ratingDistribution(ctx context.Context, where string, args ...interface{}) ([]RatingBucket, error) {
	//nolint:gosec // where is a constant supplied by callers in this package
	query := `SELECT CAST(FLOOR(rating) AS INTEGER) AS bucket, COUNT(*)
		FROM valid_ratings ` + where + `
		GROUP BY bucket
		ORDER BY bucket`
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rating distribution: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make([]RatingBucket, 0, 11)
	for rows.Next() {
		var b RatingBucket
		if err := rows.Scan(&b.Rating, &b.Count); err != nil {
			return nil, fmt.Errorf("scan rating bucket: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating distribution: %w", err)
	}
	return out, nil
}
