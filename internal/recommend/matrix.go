// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"fmt"
	"sort"
)

// SparseMatrix is a compressed sparse row (CSR) matrix of non-negative
// ratings. Column indices are sorted within each row and unique.
type SparseMatrix struct {
	rows    int
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

type cooEntry struct {
	row, col int
	val      float64
}

// BuildInteractionMatrix places each interaction at
// (user index, item index). Duplicate (user, item) pairs are summed, the
// behaviour of CSR construction from coordinate lists.
func BuildInteractionMatrix(interactions []Interaction, mapping *IndexMapping) (*SparseMatrix, error) {
	rows, cols := mapping.NumUsers(), mapping.NumItems()
	if rows == 0 || cols == 0 {
		return nil, &TrainingDataInsufficientError{
			Stage:        "matrix construction",
			Interactions: len(interactions),
			Users:        rows,
			Items:        cols,
		}
	}

	entries := make([]cooEntry, 0, len(interactions))
	for i := range interactions {
		in := &interactions[i]
		if in.Rating < 0 {
			return nil, fmt.Errorf("negative rating %v for user %q item %q", in.Rating, in.UserID, in.ItemID)
		}
		u, ok := mapping.UserIndex(in.UserID)
		if !ok {
			return nil, fmt.Errorf("user %q missing from index mapping", in.UserID)
		}
		it, ok := mapping.ItemIndex(in.ItemID)
		if !ok {
			return nil, fmt.Errorf("item %q missing from index mapping", in.ItemID)
		}
		entries = append(entries, cooEntry{row: u, col: it, val: in.Rating})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].row != entries[b].row {
			return entries[a].row < entries[b].row
		}
		return entries[a].col < entries[b].col
	})

	m := &SparseMatrix{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, len(entries)),
		data:    make([]float64, 0, len(entries)),
	}
	for i, e := range entries {
		if i > 0 && e.row == entries[i-1].row && e.col == entries[i-1].col {
			m.data[len(m.data)-1] += e.val
			continue
		}
		m.indices = append(m.indices, e.col)
		m.data = append(m.data, e.val)
		m.indptr[e.row+1]++
	}
	for r := 0; r < rows; r++ {
		m.indptr[r+1] += m.indptr[r]
	}
	return m, nil
}

// Rows returns the number of users.
func (m *SparseMatrix) Rows() int { return m.rows }

// Cols returns the number of items.
func (m *SparseMatrix) Cols() int { return m.cols }

// NNZ returns the number of stored entries.
func (m *SparseMatrix) NNZ() int { return len(m.data) }

// Row returns the column indices and values of row r. The slices alias the
// matrix storage and must not be modified.
func (m *SparseMatrix) Row(r int) ([]int, []float64) {
	lo, hi := m.indptr[r], m.indptr[r+1]
	return m.indices[lo:hi], m.data[lo:hi]
}

// At returns the value at (r, c), zero when absent.
func (m *SparseMatrix) At(r, c int) float64 {
	cols, vals := m.Row(r)
	i := sort.SearchInts(cols, c)
	if i < len(cols) && cols[i] == c {
		return vals[i]
	}
	return 0
}

// Sum returns the sum of all stored values.
func (m *SparseMatrix) Sum() float64 {
	var s float64
	for _, v := range m.data {
		s += v
	}
	return s
}

// SquaredNorm returns the squared Frobenius norm.
func (m *SparseMatrix) SquaredNorm() float64 {
	var s float64
	for _, v := range m.data {
		s += v * v
	}
	return s
}

// Transpose returns the item-major (I x U) CSR form of the matrix.
func (m *SparseMatrix) Transpose() *SparseMatrix {
	t := &SparseMatrix{
		rows:    m.cols,
		cols:    m.rows,
		indptr:  make([]int, m.cols+1),
		indices: make([]int, len(m.indices)),
		data:    make([]float64, len(m.data)),
	}
	for _, c := range m.indices {
		t.indptr[c+1]++
	}
	for c := 0; c < m.cols; c++ {
		t.indptr[c+1] += t.indptr[c]
	}
	next := append([]int(nil), t.indptr[:m.cols]...)
	for r := 0; r < m.rows; r++ {
		cols, vals := m.Row(r)
		for j, c := range cols {
			pos := next[c]
			t.indices[pos] = r
			t.data[pos] = vals[j]
			next[c]++
		}
	}
	return t
}
