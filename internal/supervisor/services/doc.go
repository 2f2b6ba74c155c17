// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

// Package services adapts Readora components to suture.Service.
//
//   - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
//   - TrainingService: runs the training pipeline on a fixed interval.
//   - JanitorService: periodically drops expired response cache entries.
//
// Every service returns ctx.Err() on shutdown and implements fmt.Stringer so
// suture can name it in its event log.
package services
