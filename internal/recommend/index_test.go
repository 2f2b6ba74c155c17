// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"errors"
	"fmt"
	"testing"
)

func TestBuildIndexMapping_FirstOccurrenceOrder(t *testing.T) {
	m := BuildIndexMapping([]Interaction{
		{UserID: "carol", ItemID: "b3"},
		{UserID: "alice", ItemID: "b1"},
		{UserID: "carol", ItemID: "b1"},
		{UserID: "bob", ItemID: "b2"},
	})

	wantUsers := []string{"carol", "alice", "bob"}
	wantItems := []string{"b3", "b1", "b2"}
	for i, id := range wantUsers {
		if got, ok := m.UserIndex(id); !ok || got != i {
			t.Errorf("UserIndex(%s) = %d, %v; want %d", id, got, ok, i)
		}
		if m.UserID(i) != id {
			t.Errorf("UserID(%d) = %s, want %s", i, m.UserID(i), id)
		}
	}
	for i, id := range wantItems {
		if got, ok := m.ItemIndex(id); !ok || got != i {
			t.Errorf("ItemIndex(%s) = %d, %v; want %d", id, got, ok, i)
		}
	}
	if _, ok := m.UserIndex("dave"); ok {
		t.Error("UserIndex(dave) should be unknown")
	}
}

func TestBuildIndexMapping_ContiguousBijection(t *testing.T) {
	var in []Interaction
	for u := 0; u < 40; u++ {
		for i := 0; i < 25; i += 1 + u%3 {
			in = append(in, Interaction{UserID: fmt.Sprintf("u%d", (u*7)%40), ItemID: fmt.Sprintf("i%d", (i*11)%25)})
		}
	}
	m := BuildIndexMapping(in)

	checkContiguous := func(kind string, n int, idOf func(int) string, indexOf func(string) (int, bool)) {
		t.Helper()
		seen := make(map[string]bool, n)
		for idx := 0; idx < n; idx++ {
			id := idOf(idx)
			if seen[id] {
				t.Fatalf("%s %s assigned twice", kind, id)
			}
			seen[id] = true
			back, ok := indexOf(id)
			if !ok || back != idx {
				t.Fatalf("%s %s round-trips to %d, want %d", kind, id, back, idx)
			}
		}
	}
	checkContiguous("user", m.NumUsers(), m.UserID, m.UserIndex)
	checkContiguous("item", m.NumItems(), m.ItemID, m.ItemIndex)

	for i := range in {
		if _, ok := m.UserIndex(in[i].UserID); !ok {
			t.Fatalf("user %s unmapped", in[i].UserID)
		}
		if _, ok := m.ItemIndex(in[i].ItemID); !ok {
			t.Fatalf("item %s unmapped", in[i].ItemID)
		}
	}
	if m.NumUsers() != 40 || m.NumItems() != 25 {
		t.Errorf("U=%d I=%d, want 40 and 25", m.NumUsers(), m.NumItems())
	}
}

func TestRestoreIndexMapping(t *testing.T) {
	valid := func() MappingTables {
		return MappingTables{
			IndexToUser: []string{"u1", "u2"},
			UserToIndex: map[string]int{"u1": 0, "u2": 1},
			IndexToItem: []string{"i1"},
			ItemToIndex: map[string]int{"i1": 0},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*MappingTables)
		wantErr bool
	}{
		{"valid", func(*MappingTables) {}, false},
		{"length mismatch", func(m *MappingTables) { m.IndexToUser = append(m.IndexToUser, "u3") }, true},
		{"index out of range", func(m *MappingTables) { m.ItemToIndex["i1"] = 1 }, true},
		{"negative index", func(m *MappingTables) { m.UserToIndex["u2"] = -1 }, true},
		{"inverse disagrees", func(m *MappingTables) { m.UserToIndex = map[string]int{"u1": 1, "u2": 0} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := valid()
			tt.mutate(&tables)
			m, err := RestoreIndexMapping(tables)
			if tt.wantErr {
				if !errors.Is(err, ErrModelBundleCorrupt) {
					t.Fatalf("error = %v, want ErrModelBundleCorrupt", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RestoreIndexMapping() error = %v", err)
			}
			if m.NumUsers() != 2 || m.NumItems() != 1 {
				t.Errorf("U=%d I=%d, want 2 and 1", m.NumUsers(), m.NumItems())
			}
		})
	}
}

func TestIndexMapping_TablesAreCopies(t *testing.T) {
	m := BuildIndexMapping([]Interaction{{UserID: "u1", ItemID: "i1"}})
	tables := m.Tables()
	tables.IndexToUser[0] = "changed"
	tables.ItemToIndex["i1"] = 9

	if m.UserID(0) != "u1" {
		t.Errorf("UserID(0) = %s after mutating tables", m.UserID(0))
	}
	if idx, _ := m.ItemIndex("i1"); idx != 0 {
		t.Errorf("ItemIndex(i1) = %d after mutating tables", idx)
	}
}
