// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// DefaultLimit is the number of recommendations returned when none is asked for.
const DefaultLimit = 10

// Ranker scores every item for a user against an immutable ModelBundle.
// It holds no mutable state and is safe for concurrent use.
type Ranker struct {
	bundle *ModelBundle
}

// NewRanker creates a ranker over bundle.
func NewRanker(bundle *ModelBundle) *Ranker {
	return &Ranker{bundle: bundle}
}

// Scores returns the dense predicted score vector for a known user.
func (r *Ranker) Scores(userID string) ([]float64, bool) {
	u, ok := r.bundle.Mapping.UserIndex(userID)
	if !ok {
		return nil, false
	}
	f := r.bundle.Factors
	row := mat.NewVecDense(f.Rank(), f.UserFactors.RawRowView(u))
	scores := mat.NewVecDense(f.NumItems(), nil)
	scores.MulVec(f.ItemFactors.T(), row)
	return scores.RawVector().Data, true
}

// Rank returns up to n items for userID, best first.
//
// Items in rated or without metadata in the bundle are skipped. Equal scores
// keep ascending dense index order. Fewer than n items are returned when the
// catalogue runs out; the list is never padded. An unknown user yields
// RankStatusColdStart with no items.
func (r *Ranker) Rank(userID string, rated map[string]struct{}, n int) Ranking {
	if n <= 0 {
		n = DefaultLimit
	}

	scores, ok := r.Scores(userID)
	if !ok {
		return Ranking{Status: RankStatusColdStart}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	items := make([]RankedItem, 0, n)
	for _, idx := range order {
		itemID := r.bundle.Mapping.ItemID(idx)
		if _, seen := rated[itemID]; seen {
			continue
		}
		if _, ok := r.bundle.Book(itemID); !ok {
			continue
		}
		items = append(items, RankedItem{ItemID: itemID, Index: idx, Score: scores[idx]})
		if len(items) == n {
			break
		}
	}
	return Ranking{Status: RankStatusPersonalized, Items: items}
}
