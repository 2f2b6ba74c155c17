// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

// tieBundle scores, for u1, the items i0..i4 as 2, 3, 3, 1, 3.
func tieBundle(t *testing.T, withoutBook ...string) *ModelBundle {
	t.Helper()
	return bundleFor(t,
		[]string{"u1", "u2"},
		[]string{"i0", "i1", "i2", "i3", "i4"},
		1,
		[]float64{1, 2},
		[]float64{2, 3, 3, 1, 3},
		withoutBook...,
	)
}

func TestRanker_Scores(t *testing.T) {
	b := bundleFor(t, []string{"u1"}, []string{"i0", "i1"}, 2,
		[]float64{1, 2},
		// K x I row-major: item 0 = (3, 5), item 1 = (4, 6)
		[]float64{3, 4, 5, 6})

	scores, ok := NewRanker(b).Scores("u1")
	if !ok {
		t.Fatal("Scores(u1) reported unknown user")
	}
	want := []float64{1*3 + 2*5, 1*4 + 2*6}
	for i := range want {
		if scores[i] != want[i] {
			t.Errorf("score[%d] = %v, want %v", i, scores[i], want[i])
		}
	}
}

func TestRanker_OrderAndTieBreak(t *testing.T) {
	r := NewRanker(tieBundle(t))

	ranking := r.Rank("u1", nil, 10)
	if ranking.Status != RankStatusPersonalized {
		t.Fatalf("Status = %v, want personalized", ranking.Status)
	}
	// Equal scores 3 keep ascending dense index: i1, i2, i4.
	checkItemIDs(t, ranking.Items, "i1", "i2", "i4", "i0", "i3")
	for i := 1; i < len(ranking.Items); i++ {
		prev, cur := ranking.Items[i-1], ranking.Items[i]
		if cur.Score > prev.Score {
			t.Errorf("score increased at %d: %v after %v", i, cur.Score, prev.Score)
		}
		if cur.Score == prev.Score && cur.Index < prev.Index {
			t.Errorf("tie at %d not in ascending index order", i)
		}
	}
}

func TestRanker_ExcludesRatedItems(t *testing.T) {
	r := NewRanker(tieBundle(t))

	ranking := r.Rank("u1", ratedSet("i1", "i4", "not-in-model"), 10)
	checkItemIDs(t, ranking.Items, "i2", "i0", "i3")
}

func TestRanker_ExclusionOnRandomModels(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	const users, items, rank = 6, 40, 3

	userIDs := make([]string, users)
	for i := range userIDs {
		userIDs[i] = fmt.Sprintf("u%d", i)
	}
	itemIDs := make([]string, items)
	for i := range itemIDs {
		itemIDs[i] = fmt.Sprintf("i%d", i)
	}
	userData := make([]float64, users*rank)
	for i := range userData {
		userData[i] = rng.Float64()
	}
	itemData := make([]float64, rank*items)
	for i := range itemData {
		itemData[i] = rng.Float64()
	}
	r := NewRanker(bundleFor(t, userIDs, itemIDs, rank, userData, itemData))

	for _, user := range userIDs {
		rated := make(map[string]struct{})
		for _, id := range itemIDs {
			if rng.IntN(3) == 0 {
				rated[id] = struct{}{}
			}
		}
		ranking := r.Rank(user, rated, 15)
		for _, it := range ranking.Items {
			if _, ok := rated[it.ItemID]; ok {
				t.Errorf("%s: rated item %s recommended", user, it.ItemID)
			}
		}
		for i := 1; i < len(ranking.Items); i++ {
			if ranking.Items[i].Score > ranking.Items[i-1].Score {
				t.Errorf("%s: scores not non-increasing at %d", user, i)
			}
		}
	}
}

func TestRanker_SkipsItemsWithoutMetadata(t *testing.T) {
	r := NewRanker(tieBundle(t, "i2"))

	checkItemIDs(t, r.Rank("u1", nil, 3).Items, "i1", "i4", "i0")
}

func TestRanker_NoPadding(t *testing.T) {
	r := NewRanker(tieBundle(t))

	ranking := r.Rank("u2", ratedSet("i0", "i1", "i2"), 10)
	checkItemIDs(t, ranking.Items, "i4", "i3")
}

func TestRanker_DefaultLimit(t *testing.T) {
	itemIDs := make([]string, 15)
	itemData := make([]float64, 15)
	for i := range itemIDs {
		itemIDs[i] = fmt.Sprintf("i%02d", i)
		itemData[i] = float64(15 - i)
	}
	r := NewRanker(bundleFor(t, []string{"u1"}, itemIDs, 1, []float64{1}, itemData))

	if got := len(r.Rank("u1", nil, 0).Items); got != DefaultLimit {
		t.Errorf("len(Items) = %d, want %d", got, DefaultLimit)
	}
}

func TestRanker_ColdStart(t *testing.T) {
	r := NewRanker(tieBundle(t))

	for _, user := range []string{"stranger", "", "U1"} {
		ranking := r.Rank(user, nil, 5)
		if ranking.Status != RankStatusColdStart {
			t.Errorf("Rank(%q).Status = %v, want cold_start", user, ranking.Status)
		}
		if len(ranking.Items) != 0 {
			t.Errorf("Rank(%q) returned %d items", user, len(ranking.Items))
		}
	}
	if _, ok := r.Scores("stranger"); ok {
		t.Error("Scores(stranger) should report unknown user")
	}
}
