// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/tomtom215/readora/internal/recommend"
)

// randomMatrix builds a users x items matrix with roughly density non-zeros.
func randomMatrix(t *testing.T, seed uint64, users, items int, density float64) *recommend.SparseMatrix {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed+1))
	var in []recommend.Interaction
	for u := 0; u < users; u++ {
		// Every user and item appears at least once so the shape is fixed.
		in = append(in, recommend.Interaction{
			UserID: fmt.Sprintf("u%d", u),
			ItemID: fmt.Sprintf("i%d", u%items),
			Rating: float64(1 + rng.IntN(10)),
		})
	}
	for i := 0; i < items; i++ {
		in = append(in, recommend.Interaction{
			UserID: fmt.Sprintf("u%d", i%users),
			ItemID: fmt.Sprintf("i%d", i),
			Rating: float64(rng.IntN(11)),
		})
	}
	for u := 0; u < users; u++ {
		for i := 0; i < items; i++ {
			if rng.Float64() < density {
				in = append(in, recommend.Interaction{
					UserID: fmt.Sprintf("u%d", u),
					ItemID: fmt.Sprintf("i%d", i),
					Rating: float64(rng.IntN(11)),
				})
			}
		}
	}
	m, err := recommend.BuildInteractionMatrix(in, recommend.BuildIndexMapping(in))
	if err != nil {
		t.Fatalf("BuildInteractionMatrix() error = %v", err)
	}
	return m
}

func TestNMF_FactorsAreNonNegative(t *testing.T) {
	tests := []struct {
		name    string
		seed    uint64
		users   int
		items   int
		density float64
		rank    int
	}{
		{"small dense", 1, 8, 6, 0.6, 3},
		{"sparse", 2, 60, 40, 0.05, 10},
		{"rank above dims", 3, 4, 5, 0.5, 30},
		{"very sparse", 4, 30, 30, 0.01, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := randomMatrix(t, tt.seed, tt.users, tt.items, tt.density)
			nmf := NewNMF(NMFConfig{Rank: tt.rank, MaxIterations: 60, Seed: 42})

			model, err := nmf.Factorize(context.Background(), v)
			if err != nil {
				t.Fatalf("Factorize() error = %v", err)
			}
			if model.NumUsers() != tt.users || model.NumItems() != tt.items || model.Rank() != tt.rank {
				t.Fatalf("shape = %v", model)
			}
			userData, itemData := model.RawData()
			for _, data := range [][]float64{userData, itemData} {
				for i, x := range data {
					if x < 0 {
						t.Fatalf("factor %d = %v is negative", i, x)
					}
				}
			}
			// Persisting goes through the same validation.
			if _, err := recommend.NewFactorModel(tt.users, tt.items, tt.rank, userData, itemData, model.Info); err != nil {
				t.Errorf("NewFactorModel() rejected trained factors: %v", err)
			}
		})
	}
}

func TestNMF_Deterministic(t *testing.T) {
	v := randomMatrix(t, 9, 40, 30, 0.1)

	run := func(workers int) ([]float64, []float64) {
		t.Helper()
		nmf := NewNMF(NMFConfig{Rank: 8, MaxIterations: 40, Seed: 1234, NumWorkers: workers})
		model, err := nmf.Factorize(context.Background(), v)
		if err != nil {
			t.Fatalf("Factorize() error = %v", err)
		}
		return model.RawData()
	}

	baseU, baseI := run(1)
	for _, workers := range []int{1, 3, 8} {
		u, i := run(workers)
		for j := range baseU {
			if u[j] != baseU[j] {
				t.Fatalf("workers=%d: user factor %d = %v, want %v", workers, j, u[j], baseU[j])
			}
		}
		for j := range baseI {
			if i[j] != baseI[j] {
				t.Fatalf("workers=%d: item factor %d = %v, want %v", workers, j, i[j], baseI[j])
			}
		}
	}

	other := NewNMF(NMFConfig{Rank: 8, MaxIterations: 40, Seed: 99, NumWorkers: 1})
	model, err := other.Factorize(context.Background(), v)
	if err != nil {
		t.Fatalf("Factorize() error = %v", err)
	}
	u, _ := model.RawData()
	same := true
	for j := range u {
		if u[j] != baseU[j] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical factors")
	}
}

func TestNMF_IterationCap(t *testing.T) {
	v := randomMatrix(t, 5, 20, 20, 0.3)
	nmf := NewNMF(NMFConfig{Rank: 5, MaxIterations: 7, CheckEvery: 10, Tolerance: 1e-12, Seed: 1})

	model, err := nmf.Factorize(context.Background(), v)
	if err != nil {
		t.Fatalf("Factorize() error = %v", err)
	}
	if model.Info.Iterations != 7 {
		t.Errorf("Iterations = %d, want 7", model.Info.Iterations)
	}
	if model.Info.Converged {
		t.Error("Converged = true after hitting the cap")
	}
	if model.Info.ReconstructionError <= 0 {
		t.Errorf("ReconstructionError = %v, want > 0", model.Info.ReconstructionError)
	}
	if nmf.Runs() != 1 || nmf.LastTrainedAt().IsZero() {
		t.Errorf("Runs() = %d, LastTrainedAt() = %v", nmf.Runs(), nmf.LastTrainedAt())
	}
}

func TestNMF_LossDecreases(t *testing.T) {
	v := randomMatrix(t, 6, 30, 25, 0.2)

	errAt := func(iters int) float64 {
		t.Helper()
		nmf := NewNMF(NMFConfig{Rank: 6, MaxIterations: iters, CheckEvery: 1000, Seed: 42, NumWorkers: 2})
		model, err := nmf.Factorize(context.Background(), v)
		if err != nil {
			t.Fatalf("Factorize() error = %v", err)
		}
		return model.Info.ReconstructionError
	}

	early, late := errAt(2), errAt(80)
	if late >= early {
		t.Errorf("reconstruction error %v after 80 iterations, %v after 2", late, early)
	}
}

func TestNMF_Converges(t *testing.T) {
	v := randomMatrix(t, 8, 10, 10, 0.5)
	nmf := NewNMF(NMFConfig{Rank: 3, MaxIterations: 5000, CheckEvery: 10, Tolerance: 1e-3, Seed: 42})

	model, err := nmf.Factorize(context.Background(), v)
	if err != nil {
		t.Fatalf("Factorize() error = %v", err)
	}
	if !model.Info.Converged {
		t.Errorf("did not converge in %d iterations", model.Info.Iterations)
	}
	if model.Info.Iterations%10 != 0 {
		t.Errorf("converged at iteration %d, checks happen every 10", model.Info.Iterations)
	}
}

func TestNMF_ContextCancelled(t *testing.T) {
	v := randomMatrix(t, 2, 10, 10, 0.3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNMF(DefaultNMFConfig()).Factorize(ctx, v)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Factorize() error = %v, want context.Canceled", err)
	}
}

func TestNewNMF_Defaults(t *testing.T) {
	cfg := NewNMF(NMFConfig{}).Config()
	if cfg.Rank != 30 || cfg.MaxIterations != 200 || cfg.CheckEvery != 10 || cfg.NumWorkers <= 0 {
		t.Errorf("Config() = %+v", cfg)
	}
	if cfg.Tolerance != 1e-4 {
		t.Errorf("Tolerance = %v, want 1e-4", cfg.Tolerance)
	}
}

func TestParallelChunks(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 7, 64} {
		hits := make([]int, 20)
		parallelChunks(len(hits), workers, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Errorf("workers=%d: index %d visited %d times", workers, i, h)
			}
		}
	}
}
