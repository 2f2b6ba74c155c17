// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import "time"

// Rating bounds. Zero is an implicit interaction, 1-10 an explicit rating.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Interaction is one (user, book, rating) record read from the rating store.
type Interaction struct {
	UserID string
	ItemID string
	Rating float64
}

// Book is the display metadata of an item.
type Book struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Year      string `json:"year,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// IngestStats counts what the rating store dropped while reading raw rows.
type IngestStats struct {
	RowsRead   int `json:"rows_read"`
	RowsKept   int `json:"rows_kept"`
	NonNumeric int `json:"non_numeric"`
	OutOfRange int `json:"out_of_range"`
	BlankIDs   int `json:"blank_ids"`
}

// Dropped returns the number of rows that did not survive ingestion.
func (s IngestStats) Dropped() int {
	return s.NonNumeric + s.OutOfRange + s.BlankIDs
}

// RankStatus tells the caller how to interpret a Ranking.
type RankStatus int

const (
	// RankStatusPersonalized means Items were scored from the user's factors.
	RankStatusPersonalized RankStatus = iota

	// RankStatusColdStart means the user is unknown to the model.
	RankStatusColdStart
)

func (s RankStatus) String() string {
	switch s {
	case RankStatusPersonalized:
		return "personalized"
	case RankStatusColdStart:
		return "cold_start"
	default:
		return "unknown"
	}
}

// RankedItem is a single ranker output entry.
type RankedItem struct {
	ItemID string
	Index  int
	Score  float64
}

// Ranking is the ranker's answer for one user.
type Ranking struct {
	Status RankStatus
	Items  []RankedItem
}

// PopularBook is one row of the persisted popularity table.
type PopularBook struct {
	Rank     int     `json:"rank"`
	ItemID   string  `json:"isbn"`
	Score    float64 `json:"score"`
	Count    int     `json:"rating_count"`
	Mean     float64 `json:"mean_rating"`
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	ImageURL string  `json:"image_url"`
}

// TrainingInfo describes how a FactorModel was produced.
type TrainingInfo struct {
	Algorithm           string        `json:"algorithm"`
	Rank                int           `json:"rank"`
	Iterations          int           `json:"iterations"`
	Converged           bool          `json:"converged"`
	ReconstructionError float64       `json:"reconstruction_error"`
	Seed                int64         `json:"seed"`
	Duration            time.Duration `json:"duration"`
	TrainedAt           time.Time     `json:"trained_at"`
}
