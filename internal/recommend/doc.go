// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Package recommend implements Readora's latent-factor book recommender.
//
// # Training
//
// Training is an offline batch pipeline driven by Trainer:
//
//	interactions -> FilterInteractions -> BuildIndexMapping
//	    -> BuildInteractionMatrix -> Factorizer -> ModelBundle -> BundleRepository
//
// In the same run the weighted popularity table is recomputed from the full
// interaction snapshot and written through a PopularityWriter.
//
// # Serving
//
// The serving process loads one ModelBundle at start and hands it to
// NewEngine. The bundle is immutable for the lifetime of the process, so the
// Ranker reads it from any number of goroutines without locking. Refreshing
// the model means training a new bundle version and restarting the server.
//
// # Cold start
//
// A user absent from the bundle's IndexMapping yields RankStatusColdStart
// from the Ranker. This is a control-flow signal, not an error: the Engine
// answers with the popularity table instead.
//
// # Errors
//
// TrainingDataInsufficientError, ModelBundleMissingError and
// ModelBundleCorruptError match ErrTrainingDataInsufficient,
// ErrModelBundleMissing and ErrModelBundleCorrupt through errors.Is.
package recommend
