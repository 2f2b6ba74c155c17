// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package recommend

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrTrainingDataInsufficient = errors.New("training data insufficient")
	ErrModelBundleMissing       = errors.New("model bundle missing")
	ErrModelBundleCorrupt       = errors.New("model bundle corrupt")
)

// TrainingDataInsufficientError halts a training run before factorization.
type TrainingDataInsufficientError struct {
	Stage        string
	Interactions int
	Users        int
	Items        int
}

func (e *TrainingDataInsufficientError) Error() string {
	return fmt.Sprintf("training data insufficient after %s: %d interactions, %d users, %d items",
		e.Stage, e.Interactions, e.Users, e.Items)
}

// Is reports whether target is ErrTrainingDataInsufficient.
func (e *TrainingDataInsufficientError) Is(target error) bool {
	return target == ErrTrainingDataInsufficient
}

// ModelBundleMissingError means no complete bundle has ever been written.
type ModelBundleMissingError struct {
	Path string
}

func (e *ModelBundleMissingError) Error() string {
	return fmt.Sprintf("no trained model bundle found in %s: run the training job first", e.Path)
}

// Is reports whether target is ErrModelBundleMissing.
func (e *ModelBundleMissingError) Is(target error) bool {
	return target == ErrModelBundleMissing
}

// ModelBundleCorruptError means the bundle artifacts disagree with each other.
type ModelBundleCorruptError struct {
	Version  int
	Artifact string
	Reason   string
	Err      error
}

func (e *ModelBundleCorruptError) Error() string {
	msg := "model bundle corrupt"
	if e.Version > 0 {
		msg += fmt.Sprintf(" (version %d)", e.Version)
	}
	if e.Artifact != "" {
		msg += ": " + e.Artifact
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrModelBundleCorrupt.
func (e *ModelBundleCorruptError) Is(target error) bool {
	return target == ErrModelBundleCorrupt
}

func (e *ModelBundleCorruptError) Unwrap() error {
	return e.Err
}

func corruptf(artifact, format string, args ...interface{}) *ModelBundleCorruptError {
	return &ModelBundleCorruptError{Artifact: artifact, Reason: fmt.Sprintf(format, args...)}
}
