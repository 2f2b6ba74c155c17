// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"context"
	"math"
	"sort"
)

// PopularityConfig parameterizes the weighted popularity table.
type PopularityConfig struct {
	// Percentile of the per-item count distribution used as m.
	Percentile float64
	// BaselineFloor is the minimum count for an item to enter that distribution.
	BaselineFloor int
	// TableSize is the number of rows kept.
	TableSize int
}

// DefaultPopularityConfig returns the 90th percentile, floor 1, top 100 settings.
func DefaultPopularityConfig() PopularityConfig {
	return PopularityConfig{Percentile: 0.90, BaselineFloor: 1, TableSize: 100}
}

// PopularityWriter persists a regenerated popularity table wholesale.
type PopularityWriter interface {
	ReplacePopularBooks(ctx context.Context, rows []PopularBook) error
}

// ItemStats aggregates the ratings of one item.
type ItemStats struct {
	ItemID string
	Count  int
	Mean   float64
}

// PopularityTable is the output of ComputePopularity.
type PopularityTable struct {
	Rows       []PopularBook
	MinCount   float64
	GlobalMean float64
	Qualified  int
}

// WeightedScore shrinks an item's mean rating R toward the global mean C:
// v/(v+m)*R + m/(v+m)*C.
func WeightedScore(v, r, c, m float64) float64 {
	if v+m == 0 {
		return c
	}
	return v/(v+m)*r + m/(v+m)*c
}

// Quantile returns the q-th quantile of sorted values with linear
// interpolation between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// AggregateItemStats returns per-item count and mean in first-occurrence
// order, plus the global mean over all interactions.
func AggregateItemStats(interactions []Interaction) ([]ItemStats, float64) {
	if len(interactions) == 0 {
		return nil, 0
	}
	pos := make(map[string]int)
	sums := make([]float64, 0)
	stats := make([]ItemStats, 0)
	var total float64
	for i := range interactions {
		in := &interactions[i]
		total += in.Rating
		p, ok := pos[in.ItemID]
		if !ok {
			p = len(stats)
			pos[in.ItemID] = p
			stats = append(stats, ItemStats{ItemID: in.ItemID})
			sums = append(sums, 0)
		}
		stats[p].Count++
		sums[p] += in.Rating
	}
	for i := range stats {
		stats[i].Mean = sums[i] / float64(stats[i].Count)
	}
	return stats, total / float64(len(interactions))
}

// ComputePopularity ranks items by WeightedScore.
//
// m is the configured percentile of item counts among items with at least
// BaselineFloor ratings; only items with count >= m qualify. Ties are broken
// by ascending item id. books supplies display metadata; items without a
// record keep empty display fields.
func ComputePopularity(interactions []Interaction, books map[string]Book, cfg PopularityConfig) PopularityTable {
	stats, globalMean := AggregateItemStats(interactions)
	if len(stats) == 0 {
		return PopularityTable{}
	}

	counts := make([]float64, 0, len(stats))
	for i := range stats {
		if stats[i].Count >= cfg.BaselineFloor {
			counts = append(counts, float64(stats[i].Count))
		}
	}
	sort.Float64s(counts)
	m := Quantile(counts, cfg.Percentile)

	rows := make([]PopularBook, 0)
	for i := range stats {
		s := &stats[i]
		v := float64(s.Count)
		if s.Count < cfg.BaselineFloor || v < m {
			continue
		}
		book := books[s.ItemID]
		rows = append(rows, PopularBook{
			ItemID:   s.ItemID,
			Score:    WeightedScore(v, s.Mean, globalMean, m),
			Count:    s.Count,
			Mean:     s.Mean,
			Title:    book.Title,
			Author:   book.Author,
			ImageURL: book.ImageURL,
		})
	}
	qualified := len(rows)

	sort.Slice(rows, func(a, b int) bool {
		if rows[a].Score != rows[b].Score {
			return rows[a].Score > rows[b].Score
		}
		return rows[a].ItemID < rows[b].ItemID
	})
	if cfg.TableSize > 0 && len(rows) > cfg.TableSize {
		rows = rows[:cfg.TableSize]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return PopularityTable{Rows: rows, MinCount: m, GlobalMean: globalMean, Qualified: qualified}
}

// SlicePopular returns up to n rows of table that are not in exclude.
func SlicePopular(table []PopularBook, exclude map[string]struct{}, n int) []PopularBook {
	if n <= 0 {
		n = DefaultLimit
	}
	out := make([]PopularBook, 0, min(n, len(table)))
	for i := range table {
		if _, skip := exclude[table[i].ItemID]; skip {
			continue
		}
		out = append(out, table[i])
		if len(out) == n {
			break
		}
	}
	return out
}
