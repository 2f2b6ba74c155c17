// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

/*
Package metrics provides Prometheus metrics for the training job and the
serving API.

All collectors are registered on the default registry with promauto and are
exposed by the API at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rejected by rate limiting (counter)
    Labels: limiter
  - auth_failures_total: Rejected bearer tokens (counter)
    Labels: reason

Training Metrics:
  - training_runs_total: Runs by result (counter)
    Labels: result (success, insufficient_data, error)
  - training_duration_seconds: Run duration (histogram)
  - training_last_success_timestamp: Unix time of the last success (gauge)
  - training_rows_dropped_total: Rating rows dropped on ingestion (counter)
    Labels: reason (non_numeric, out_of_range, blank_id)
  - training_matrix_size: Users, items and non-zeros of the last model (gauge)
  - training_reconstruction_error: Frobenius error of the last model (gauge)

Serving Metrics:
  - recommendations_total: Responses (counter)
    Labels: source (model, popularity), outcome (personalized, cold_start, degraded)
  - recommendation_duration_seconds: Engine latency (histogram)
  - model_bundle_version / model_bundle_loaded: Loaded bundle (gauge)

Cache and Circuit Breaker Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counter)
    Labels: cache_type (memory, badger)
  - cache_entries (gauge)
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_state_transitions_total (counter)

Example PromQL:

	# Share of recommendations served from the popularity fallback
	sum(rate(recommendations_total{source="popularity"}[5m]))
	  / sum(rate(recommendations_total[5m]))

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) /
	  (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

# Cardinality

Endpoint labels use the chi route pattern, never the raw path, so user IDs
and ISBNs do not become label values.
*/
package metrics
