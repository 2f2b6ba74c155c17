// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package algorithms

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/readora/internal/recommend"
)

// NMFConfig contains configuration for non-negative matrix factorization.
type NMFConfig struct {
	// Rank is the number of latent factors K.
	Rank int

	// MaxIterations caps the number of multiplicative update rounds.
	// Hitting the cap is not an error; the factors are returned as-is.
	MaxIterations int

	// Tolerance stops training once the relative loss improvement between
	// two checks, measured against the initial loss, falls below it.
	Tolerance float64

	// CheckEvery is the number of iterations between loss evaluations.
	CheckEvery int

	// Seed drives the random initialization.
	Seed int64

	// NumWorkers is the number of parallel workers. If <= 0, GOMAXPROCS.
	NumWorkers int
}

// DefaultNMFConfig returns rank 30, 200 iterations, seed 42.
func DefaultNMFConfig() NMFConfig {
	return NMFConfig{
		Rank:          30,
		MaxIterations: 200,
		Tolerance:     1e-4,
		CheckEvery:    10,
		Seed:          42,
	}
}

// epsilon keeps update denominators away from zero.
const epsilon = 1e-12

// NMF is a multiplicative-update non-negative matrix factorizer.
type NMF struct {
	BaseAlgorithm
	config NMFConfig
}

var _ recommend.Factorizer = (*NMF)(nil)

// NewNMF creates an NMF factorizer, filling unset fields with defaults.
func NewNMF(cfg NMFConfig) *NMF {
	defaults := DefaultNMFConfig()
	if cfg.Rank <= 0 {
		cfg.Rank = defaults.Rank
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaults.Tolerance
	}
	if cfg.CheckEvery <= 0 {
		cfg.CheckEvery = defaults.CheckEvery
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.GOMAXPROCS(0)
	}
	return &NMF{
		BaseAlgorithm: NewBaseAlgorithm("nmf"),
		config:        cfg,
	}
}

// Config returns the effective configuration.
func (n *NMF) Config() NMFConfig {
	return n.config
}

// Factorize computes W (U x K) and H (K x I) with W*H close to v.
func (n *NMF) Factorize(ctx context.Context, v *recommend.SparseMatrix) (*recommend.FactorModel, error) {
	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	users, items, k := v.Rows(), v.Cols(), n.config.Rank
	if users == 0 || items == 0 {
		return nil, &recommend.TrainingDataInsufficientError{Stage: "factorization", Users: users, Items: items}
	}

	start := time.Now()
	vt := v.Transpose()
	w, h := n.initFactors(v, users, items, k)

	ws := newWorkspace(users, items, k)
	normV := v.SquaredNorm()
	initialLoss := n.loss(v, w, h, normV, ws)
	prevLoss := initialLoss
	loss := initialLoss

	iterations := 0
	converged := false
	for iter := 1; iter <= n.config.MaxIterations; iter++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		n.updateH(vt, w, h, ws)
		n.updateW(v, w, h, ws)
		iterations = iter

		if iter%n.config.CheckEvery == 0 {
			loss = n.loss(v, w, h, normV, ws)
			if initialLoss > 0 && (prevLoss-loss)/initialLoss < n.config.Tolerance {
				converged = true
				break
			}
			prevLoss = loss
		}
	}
	if iterations%n.config.CheckEvery != 0 {
		loss = n.loss(v, w, h, normV, ws)
	}

	finished := time.Now()
	n.markTrained(finished)

	return &recommend.FactorModel{
		UserFactors: w,
		ItemFactors: h,
		Info: recommend.TrainingInfo{
			Algorithm:           n.Name(),
			Rank:                k,
			Iterations:          iterations,
			Converged:           converged,
			ReconstructionError: math.Sqrt(math.Max(loss, 0)),
			Seed:                n.config.Seed,
			Duration:            finished.Sub(start),
			TrainedAt:           finished,
		},
	}, nil
}

// initFactors draws |N(0,1)| entries scaled by sqrt(mean(V)/K).
func (n *NMF) initFactors(v *recommend.SparseMatrix, users, items, k int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewSource(n.config.Seed)) //nolint:gosec // deterministic model init, not security
	scale := math.Sqrt(v.Sum() / float64(users*items) / float64(k))

	hData := make([]float64, k*items)
	for i := range hData {
		hData[i] = scale * math.Abs(rng.NormFloat64())
	}
	wData := make([]float64, users*k)
	for i := range wData {
		wData[i] = scale * math.Abs(rng.NormFloat64())
	}
	return mat.NewDense(users, k, wData), mat.NewDense(k, items, hData)
}

// workspace holds buffers reused across iterations.
type workspace struct {
	numer *mat.Dense // K x I for H, U x K for W
	numW  *mat.Dense
	gram  *mat.Dense // K x K
	denH  *mat.Dense // K x I
	denW  *mat.Dense // U x K
	ht    *mat.Dense // I x K copy of H'
}

func newWorkspace(users, items, k int) *workspace {
	return &workspace{
		numer: mat.NewDense(k, items, nil),
		numW:  mat.NewDense(users, k, nil),
		gram:  mat.NewDense(k, k, nil),
		denH:  mat.NewDense(k, items, nil),
		denW:  mat.NewDense(users, k, nil),
		ht:    mat.NewDense(items, k, nil),
	}
}

// updateH applies H <- H * (W'V) / (W'W H).
func (n *NMF) updateH(vt *recommend.SparseMatrix, w, h *mat.Dense, ws *workspace) {
	k, items := h.Dims()

	// W'V column by column: column i is the sum of v_ui * W[u,:].
	parallelChunks(items, n.config.NumWorkers, func(start, end int) {
		col := make([]float64, k)
		for i := start; i < end; i++ {
			clear(col)
			users, vals := vt.Row(i)
			for j, u := range users {
				wRow := w.RawRowView(u)
				for f := 0; f < k; f++ {
					col[f] += vals[j] * wRow[f]
				}
			}
			for f := 0; f < k; f++ {
				ws.numer.Set(f, i, col[f])
			}
		}
	})

	ws.gram.Mul(w.T(), w)
	ws.denH.Mul(ws.gram, h)

	parallelChunks(k, n.config.NumWorkers, func(start, end int) {
		for f := start; f < end; f++ {
			hRow := h.RawRowView(f)
			numRow := ws.numer.RawRowView(f)
			denRow := ws.denH.RawRowView(f)
			for i := range hRow {
				hRow[i] = multiplicative(hRow[i], numRow[i], denRow[i])
			}
		}
	})
}

// updateW applies W <- W * (VH') / (W HH').
func (n *NMF) updateW(v *recommend.SparseMatrix, w, h *mat.Dense, ws *workspace) {
	users, k := w.Dims()
	ws.ht.Copy(h.T())

	parallelChunks(users, n.config.NumWorkers, func(start, end int) {
		for u := start; u < end; u++ {
			numRow := ws.numW.RawRowView(u)
			clear(numRow)
			items, vals := v.Row(u)
			for j, i := range items {
				hCol := ws.ht.RawRowView(i)
				for f := 0; f < k; f++ {
					numRow[f] += vals[j] * hCol[f]
				}
			}
		}
	})

	ws.gram.Mul(h, h.T())
	ws.denW.Mul(w, ws.gram)

	parallelChunks(users, n.config.NumWorkers, func(start, end int) {
		for u := start; u < end; u++ {
			wRow := w.RawRowView(u)
			numRow := ws.numW.RawRowView(u)
			denRow := ws.denW.RawRowView(u)
			for f := range wRow {
				wRow[f] = multiplicative(wRow[f], numRow[f], denRow[f])
			}
		}
	})
}

func multiplicative(x, numer, denom float64) float64 {
	x *= numer / math.Max(denom, epsilon)
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	return x
}

// loss returns ||V - WH||^2 expanded as
// ||V||^2 - 2 sum_{nnz} v_ui (WH)_ui + trace(W'W HH').
func (n *NMF) loss(v *recommend.SparseMatrix, w, h *mat.Dense, normV float64, ws *workspace) float64 {
	users, k := w.Dims()
	ws.ht.Copy(h.T())

	partial := make([]float64, users)
	parallelChunks(users, n.config.NumWorkers, func(start, end int) {
		for u := start; u < end; u++ {
			wRow := w.RawRowView(u)
			items, vals := v.Row(u)
			var s float64
			for j, i := range items {
				hCol := ws.ht.RawRowView(i)
				var pred float64
				for f := 0; f < k; f++ {
					pred += wRow[f] * hCol[f]
				}
				s += vals[j] * pred
			}
			partial[u] = s
		}
	})
	var cross float64
	for _, s := range partial {
		cross += s
	}

	wtw := mat.NewDense(k, k, nil)
	wtw.Mul(w.T(), w)
	hht := mat.NewDense(k, k, nil)
	hht.Mul(h, h.T())
	var trace float64
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			trace += wtw.At(a, b) * hht.At(b, a)
		}
	}
	return normV - 2*cross + trace
}

// String implements fmt.Stringer.
func (n *NMF) String() string {
	return fmt.Sprintf("NMF{rank=%d, max_iter=%d, seed=%d}", n.config.Rank, n.config.MaxIterations, n.config.Seed)
}
