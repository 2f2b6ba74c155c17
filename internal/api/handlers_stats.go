// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/readora/internal/database"
	"github.com/tomtom215/readora/internal/logging"
)

// Stats handles GET /api/v1/stats. The report scans the whole rating store,
// so the encoded result is kept in the response cache when one is configured.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.cache != nil {
		if data, ok := h.cache.Get(reportCacheKey); ok {
			var report database.DatasetReport
			if err := json.Unmarshal(data, &report); err == nil {
				respondSuccess(w, r, start, &report, true)
				return
			}
			h.cache.Delete(reportCacheKey)
		}
	}

	report, err := h.store.DatasetReport(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to build dataset report", err)
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(report); err == nil {
			h.cache.Set(reportCacheKey, data)
		} else {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to cache dataset report")
		}
	}

	respondSuccess(w, r, start, report, false)
}
