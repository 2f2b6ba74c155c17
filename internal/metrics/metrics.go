// Readora - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/readora

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the training job and the serving API:
// - API endpoint latency and throughput
// - Training runs and ingestion quality
// - Recommendation outcomes
// - Cache and circuit breaker behavior

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"limiter"}, // "ip", "subject"
	)

	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of rejected bearer tokens",
		},
		[]string{"reason"},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_runs_total",
			Help: "Total number of training runs by result",
		},
		[]string{"result"}, // "success", "insufficient_data", "error"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	TrainingRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "training_rows_dropped_total",
			Help: "Rating rows dropped during ingestion",
		},
		[]string{"reason"}, // "non_numeric", "out_of_range", "blank_id"
	)

	TrainingMatrixSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "training_matrix_size",
			Help: "Shape of the last trained interaction matrix",
		},
		[]string{"dimension"}, // "users", "items", "non_zeros"
	)

	TrainingReconstructionError = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_reconstruction_error",
			Help: "Frobenius reconstruction error of the last trained model",
		},
	)

	// Serving Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation responses",
		},
		[]string{"source", "outcome"}, // outcome: "personalized", "cold_start", "degraded"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time to compute a recommendation response",
			Buckets: prometheus.DefBuckets,
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_bundle_version",
			Help: "Version of the loaded model bundle (0 when none is loaded)",
		},
	)

	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_bundle_loaded",
			Help: "1 when a model bundle is loaded",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "memory", "badger"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (capacity or TTL)",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// Training results.
const (
	ResultSuccess          = "success"
	ResultInsufficientData = "insufficient_data"
	ResultError            = "error"
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// TrainingOutcome is the subset of a training report that is exported.
type TrainingOutcome struct {
	Result              string
	Duration            time.Duration
	NonNumeric          int
	OutOfRange          int
	BlankIDs            int
	Users               int
	Items               int
	NonZeros            int
	ReconstructionError float64
}

// RecordTrainingRun records one training run. Shape gauges only move on success.
func RecordTrainingRun(o TrainingOutcome) {
	TrainingRuns.WithLabelValues(o.Result).Inc()
	TrainingDuration.Observe(o.Duration.Seconds())
	TrainingRowsDropped.WithLabelValues("non_numeric").Add(float64(o.NonNumeric))
	TrainingRowsDropped.WithLabelValues("out_of_range").Add(float64(o.OutOfRange))
	TrainingRowsDropped.WithLabelValues("blank_id").Add(float64(o.BlankIDs))

	if o.Result != ResultSuccess {
		return
	}
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
	TrainingMatrixSize.WithLabelValues("users").Set(float64(o.Users))
	TrainingMatrixSize.WithLabelValues("items").Set(float64(o.Items))
	TrainingMatrixSize.WithLabelValues("non_zeros").Set(float64(o.NonZeros))
	TrainingReconstructionError.Set(o.ReconstructionError)
}

// RecordRecommendation records one served recommendation response.
func RecordRecommendation(source string, coldStart, degraded bool, duration time.Duration) {
	outcome := "personalized"
	switch {
	case degraded:
		outcome = "degraded"
	case coldStart:
		outcome = "cold_start"
	}
	RecommendationsTotal.WithLabelValues(source, outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// SetModelInfo publishes the loaded bundle version.
func SetModelInfo(version int, loaded bool) {
	ModelVersion.Set(float64(version))
	if loaded {
		ModelLoaded.Set(1)
	} else {
		ModelLoaded.Set(0)
	}
}

// breakerStateValue maps gobreaker state names onto the gauge encoding.
func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordBreakerTransition records a circuit breaker state change.
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// SetAppInfo publishes build information and starts the uptime clock.
func SetAppInfo(version string, start time.Time) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	AppUptime.Set(time.Since(start).Seconds())
}
