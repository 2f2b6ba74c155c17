// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Factorizer decomposes an interaction matrix into non-negative factors.
// Implementations must be deterministic for a fixed seed and input.
type Factorizer interface {
	Name() string
	Factorize(ctx context.Context, m *SparseMatrix) (*FactorModel, error)
}

// FactorModel holds UserFactors (U x K) and ItemFactors (K x I).
type FactorModel struct {
	UserFactors *mat.Dense
	ItemFactors *mat.Dense
	Info        TrainingInfo
}

// NewFactorModel wraps row-major factor data, checking shapes and values.
func NewFactorModel(users, items, rank int, userData, itemData []float64, info TrainingInfo) (*FactorModel, error) {
	if users <= 0 || items <= 0 || rank <= 0 {
		return nil, corruptf("factors", "non-positive shape U=%d I=%d K=%d", users, items, rank)
	}
	if len(userData) != users*rank {
		return nil, corruptf("factors", "user factors hold %d values, want %d x %d", len(userData), users, rank)
	}
	if len(itemData) != rank*items {
		return nil, corruptf("factors", "item factors hold %d values, want %d x %d", len(itemData), rank, items)
	}
	for _, data := range [][]float64{userData, itemData} {
		for _, v := range data {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, corruptf("factors", "invalid factor value %v", v)
			}
		}
	}
	return &FactorModel{
		UserFactors: mat.NewDense(users, rank, userData),
		ItemFactors: mat.NewDense(rank, items, itemData),
		Info:        info,
	}, nil
}

// Rank returns K.
func (f *FactorModel) Rank() int {
	_, k := f.UserFactors.Dims()
	return k
}

// NumUsers returns the number of user factor rows.
func (f *FactorModel) NumUsers() int {
	u, _ := f.UserFactors.Dims()
	return u
}

// NumItems returns the number of item factor columns.
func (f *FactorModel) NumItems() int {
	_, i := f.ItemFactors.Dims()
	return i
}

func (f *FactorModel) validate() error {
	_, k := f.UserFactors.Dims()
	kk, _ := f.ItemFactors.Dims()
	if k != kk {
		return corruptf("factors", "rank mismatch: user factors K=%d, item factors K=%d", k, kk)
	}
	return nil
}

// RawData returns row-major copies of both factor matrices.
func (f *FactorModel) RawData() (userData, itemData []float64) {
	return denseData(f.UserFactors), denseData(f.ItemFactors)
}

func denseData(d *mat.Dense) []float64 {
	r, c := d.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, d.RawRowView(i)...)
	}
	return out
}

// String implements fmt.Stringer.
func (f *FactorModel) String() string {
	return fmt.Sprintf("FactorModel{U=%d, I=%d, K=%d}", f.NumUsers(), f.NumItems(), f.Rank())
}
