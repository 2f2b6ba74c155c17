// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import "context"

// ModelBundle is the unit of persistence and serving: factors, the id/index
// mapping they were trained against, and the metadata of the mapped books.
// A bundle is immutable once constructed.
type ModelBundle struct {
	Version int
	Factors *FactorModel
	Mapping *IndexMapping

	books map[string]Book
}

// BundleRepository persists and loads complete bundles.
type BundleRepository interface {
	SaveBundle(ctx context.Context, b *ModelBundle) (int, error)
	LoadBundle(ctx context.Context) (*ModelBundle, error)
}

// NewModelBundle validates that factors and mapping agree and snapshots the
// metadata of mapped books. Books for unmapped items are dropped; the first
// record wins for a repeated ISBN. A disagreement between factors and
// mapping is a ModelBundleCorruptError.
func NewModelBundle(factors *FactorModel, mapping *IndexMapping, books []Book) (*ModelBundle, error) {
	if factors == nil || mapping == nil {
		return nil, corruptf("bundle", "factors and mappings must both be present")
	}
	if err := factors.validate(); err != nil {
		return nil, err
	}
	if mapping.NumUsers() != factors.NumUsers() {
		return nil, corruptf("mappings", "%d users mapped, user factors have %d rows",
			mapping.NumUsers(), factors.NumUsers())
	}
	if mapping.NumItems() != factors.NumItems() {
		return nil, corruptf("mappings", "%d items mapped, item factors have %d columns",
			mapping.NumItems(), factors.NumItems())
	}
	for id, idx := range mapping.userIndex {
		if idx >= factors.NumUsers() {
			return nil, corruptf("mappings", "user %q references row %d beyond %d", id, idx, factors.NumUsers())
		}
	}
	for id, idx := range mapping.itemIndex {
		if idx >= factors.NumItems() {
			return nil, corruptf("mappings", "item %q references column %d beyond %d", id, idx, factors.NumItems())
		}
	}

	snapshot := make(map[string]Book, mapping.NumItems())
	for i := range books {
		if _, mapped := mapping.itemIndex[books[i].ISBN]; !mapped {
			continue
		}
		if _, seen := snapshot[books[i].ISBN]; !seen {
			snapshot[books[i].ISBN] = books[i]
		}
	}

	return &ModelBundle{Factors: factors, Mapping: mapping, books: snapshot}, nil
}

// Book returns the metadata snapshot entry for an item.
func (b *ModelBundle) Book(itemID string) (Book, bool) {
	book, ok := b.books[itemID]
	return book, ok
}

// Books returns the metadata snapshot in dense item order.
func (b *ModelBundle) Books() []Book {
	out := make([]Book, 0, len(b.books))
	for i := 0; i < b.Mapping.NumItems(); i++ {
		if book, ok := b.books[b.Mapping.ItemID(i)]; ok {
			out = append(out, book)
		}
	}
	return out
}

// WithVersion returns a shallow copy stamped with a store version.
func (b *ModelBundle) WithVersion(version int) *ModelBundle {
	cp := *b
	cp.Version = version
	return &cp
}
