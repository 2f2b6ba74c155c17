// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

// Thresholds are the minimum-activity limits of the interaction filter.
type Thresholds struct {
	MinItemRatings int
	MinUserRatings int
}

// DefaultThresholds returns the 10/10 thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{MinItemRatings: 10, MinUserRatings: 10}
}

// FilterInteractions drops sparse items and then sparse users.
//
// Item counts are computed on the full input; user counts are recomputed on
// the item-filtered set. The filter is applied once in that order, so an item
// can end up below MinItemRatings after its sparse raters are removed.
// Input order is preserved. An empty result is a
// TrainingDataInsufficientError.
func FilterInteractions(interactions []Interaction, th Thresholds) ([]Interaction, error) {
	minItem := max(th.MinItemRatings, 1)
	minUser := max(th.MinUserRatings, 1)

	itemCounts := make(map[string]int)
	for i := range interactions {
		itemCounts[interactions[i].ItemID]++
	}

	byItem := make([]Interaction, 0, len(interactions))
	for i := range interactions {
		if itemCounts[interactions[i].ItemID] >= minItem {
			byItem = append(byItem, interactions[i])
		}
	}

	userCounts := make(map[string]int)
	for i := range byItem {
		userCounts[byItem[i].UserID]++
	}

	filtered := make([]Interaction, 0, len(byItem))
	for i := range byItem {
		if userCounts[byItem[i].UserID] >= minUser {
			filtered = append(filtered, byItem[i])
		}
	}

	if len(filtered) == 0 {
		return nil, &TrainingDataInsufficientError{Stage: "filtering"}
	}
	return filtered, nil
}
