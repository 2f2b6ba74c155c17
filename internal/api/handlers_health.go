// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version,omitempty"`
	DatabaseOK    bool    `json:"database_ok"`
	ModelLoaded   bool    `json:"model_loaded"`
	ModelVersion  int     `json:"model_version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health.
//
// The endpoint always answers 200 while the process is alive. A missing
// model or an unreachable database downgrades status to "degraded" because
// the popular endpoint keeps serving in both cases.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	dbOK := h.store.Ping(ctx) == nil

	info := h.engine.ModelInfo()
	status := HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		DatabaseOK:    dbOK,
		ModelLoaded:   info.Loaded,
		ModelVersion:  info.Version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if !dbOK || !info.Loaded {
		status.Status = "degraded"
	}

	respondSuccess(w, r, start, status, false)
}

// Model handles GET /api/v1/model.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), h.engine.ModelInfo(), false)
}
