// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Package algorithms implements the matrix factorization routines behind
// recommend.Factorizer.
//
// NMF factorizes the sparse user x book rating matrix V into non-negative
// user factors W (U x K) and item factors H (K x I) using Lee and Seung's
// multiplicative updates for the Frobenius loss:
//
//	H <- H * (W'V) / (W'W H)
//	W <- W * (VH') / (W HH')
//
// Sparse products are computed row by row over the CSR storage; dense
// K x K products use gonum. Work is split into contiguous chunks across
// workers, and every output element is summed in a fixed order, so results
// are identical for a given seed regardless of the worker count.
package algorithms
