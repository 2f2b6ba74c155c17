// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/readora/internal/logging"
)

// importTimeout bounds one CSV import; the rating log is around a million rows.
const importTimeout = 10 * time.Minute

// CSVSources names the CSV files to import. Empty paths are skipped.
type CSVSources struct {
	BooksCSV   string
	UsersCSV   string
	RatingsCSV string
	Delimiter  string
}

// ImportResult reports the row count of each imported table.
type ImportResult struct {
	Books    int64         `json:"books"`
	Users    int64         `json:"users"`
	Ratings  int64         `json:"ratings"`
	Duration time.Duration `json:"duration"`
}

// csvTable describes how one CSV file maps onto a table.
type csvTable struct {
	table   string
	columns []string
}

var (
	booksCSV = csvTable{
		table: "books",
		columns: []string{
			"isbn", "title", "author", "year_of_publication", "publisher",
			"image_url_s", "image_url_m", "image_url_l",
		},
	}
	usersCSV   = csvTable{table: "users", columns: []string{"user_id", "location", "age"}}
	ratingsCSV = csvTable{table: "ratings", columns: []string{"user_id", "isbn", "book_rating"}}
)

// sqlString quotes s as a SQL string literal.
func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// readCSVQuery builds an INSERT ... SELECT over read_csv. Every column is
// read as VARCHAR so that nothing is coerced before the ratings are counted.
func (t csvTable) readCSVQuery(path, delimiter string) string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = sqlString(c)
	}
	cols := strings.Join(t.columns, ", ")
	return fmt.Sprintf(`INSERT INTO %s (%s)
		SELECT %s FROM read_csv(%s,
			delim = %s,
			header = true,
			quote = '"',
			escape = '"',
			all_varchar = true,
			ignore_errors = true,
			names = [%s])`,
		t.table, cols, cols, sqlString(path), sqlString(delimiter), strings.Join(names, ", "))
}

// ImportCSV replaces the contents of each table whose CSV is configured.
// Each table is replaced in its own transaction.
func (db *DB) ImportCSV(ctx context.Context, src CSVSources) (*ImportResult, error) {
	start := time.Now()
	delimiter := src.Delimiter
	if delimiter == "" {
		delimiter = ";"
	}

	result := &ImportResult{}
	steps := []struct {
		path  string
		table csvTable
		count *int64
	}{
		{src.BooksCSV, booksCSV, &result.Books},
		{src.UsersCSV, usersCSV, &result.Users},
		{src.RatingsCSV, ratingsCSV, &result.Ratings},
	}

	for _, step := range steps {
		if step.path == "" {
			continue
		}
		if _, err := os.Stat(step.path); err != nil {
			return nil, fmt.Errorf("import %s: %w", step.table.table, err)
		}
		n, err := db.importTable(ctx, step.table, step.path, delimiter)
		if err != nil {
			return nil, err
		}
		*step.count = n
		logging.Info().
			Str("table", step.table.table).
			Str("path", step.path).
			Int64("rows", n).
			Msg("Imported CSV")
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (db *DB) importTable(ctx context.Context, t csvTable, path, delimiter string) (n int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, importTimeout)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackOnError(tx, &err)

	//nolint:gosec // table names are constants of this package
	if _, err = tx.ExecContext(ctx, `DELETE FROM `+t.table); err != nil {
		return 0, fmt.Errorf("clear %s: %w", t.table, err)
	}
	res, err := tx.ExecContext(ctx, t.readCSVQuery(path, delimiter))
	if err != nil {
		return 0, fmt.Errorf("import %s from %s: %w", t.table, path, err)
	}
	if n, err = res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("count imported %s: %w", t.table, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s import: %w", t.table, err)
	}
	return n, nil
}
