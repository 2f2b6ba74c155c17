// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

// IndexMapping is the pair of bijections between external ids and dense
// matrix positions. The slices are the arenas (position = dense index); the
// maps are the inverse lookups. It is never mutated after construction.
type IndexMapping struct {
	users     []string
	items     []string
	userIndex map[string]int
	itemIndex map[string]int
}

// MappingTables is the persisted four-way form of an IndexMapping.
type MappingTables struct {
	IndexToUser []string
	UserToIndex map[string]int
	IndexToItem []string
	ItemToIndex map[string]int
}

// BuildIndexMapping assigns dense indices in first-occurrence order.
func BuildIndexMapping(interactions []Interaction) *IndexMapping {
	m := &IndexMapping{
		userIndex: make(map[string]int),
		itemIndex: make(map[string]int),
	}
	for i := range interactions {
		if _, ok := m.userIndex[interactions[i].UserID]; !ok {
			m.userIndex[interactions[i].UserID] = len(m.users)
			m.users = append(m.users, interactions[i].UserID)
		}
		if _, ok := m.itemIndex[interactions[i].ItemID]; !ok {
			m.itemIndex[interactions[i].ItemID] = len(m.items)
			m.items = append(m.items, interactions[i].ItemID)
		}
	}
	return m
}

// RestoreIndexMapping rebuilds a mapping from persisted tables, verifying
// that both directions describe the same contiguous bijection.
func RestoreIndexMapping(t MappingTables) (*IndexMapping, error) {
	userIndex, err := checkBijection("user", t.IndexToUser, t.UserToIndex)
	if err != nil {
		return nil, err
	}
	itemIndex, err := checkBijection("item", t.IndexToItem, t.ItemToIndex)
	if err != nil {
		return nil, err
	}
	return &IndexMapping{
		users:     append([]string(nil), t.IndexToUser...),
		items:     append([]string(nil), t.IndexToItem...),
		userIndex: userIndex,
		itemIndex: itemIndex,
	}, nil
}

func checkBijection(kind string, arena []string, inverse map[string]int) (map[string]int, error) {
	if len(arena) != len(inverse) {
		return nil, corruptf("mappings", "%s tables disagree: %d indices, %d ids", kind, len(arena), len(inverse))
	}
	out := make(map[string]int, len(inverse))
	for id, idx := range inverse {
		if idx < 0 || idx >= len(arena) {
			return nil, corruptf("mappings", "%s %q mapped to index %d outside [0,%d)", kind, id, idx, len(arena))
		}
		if arena[idx] != id {
			return nil, corruptf("mappings", "%s index %d maps back to %q, not %q", kind, idx, arena[idx], id)
		}
		out[id] = idx
	}
	return out, nil
}

// Tables returns copies of the four lookup tables for persistence.
func (m *IndexMapping) Tables() MappingTables {
	t := MappingTables{
		IndexToUser: append([]string(nil), m.users...),
		UserToIndex: make(map[string]int, len(m.userIndex)),
		IndexToItem: append([]string(nil), m.items...),
		ItemToIndex: make(map[string]int, len(m.itemIndex)),
	}
	for k, v := range m.userIndex {
		t.UserToIndex[k] = v
	}
	for k, v := range m.itemIndex {
		t.ItemToIndex[k] = v
	}
	return t
}

// UserIndex returns the dense index of a user.
func (m *IndexMapping) UserIndex(userID string) (int, bool) {
	idx, ok := m.userIndex[userID]
	return idx, ok
}

// ItemIndex returns the dense index of an item.
func (m *IndexMapping) ItemIndex(itemID string) (int, bool) {
	idx, ok := m.itemIndex[itemID]
	return idx, ok
}

// UserID returns the external id at a dense user index.
func (m *IndexMapping) UserID(idx int) string { return m.users[idx] }

// ItemID returns the external id at a dense item index.
func (m *IndexMapping) ItemID(idx int) string { return m.items[idx] }

// NumUsers returns U.
func (m *IndexMapping) NumUsers() int { return len(m.users) }

// NumItems returns I.
func (m *IndexMapping) NumItems() int { return len(m.items) }
