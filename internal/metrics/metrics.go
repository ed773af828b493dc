// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Verification outcomes.
const (
	VerifyMatched  = "matched"
	VerifyMismatch = "mismatch"
	VerifyError    = "error"
	VerifySkipped  = "skipped"
)

var (
	// Upstream (remote admin API) Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_upstream_requests_total",
			Help: "Total number of requests sent to the remote admin API",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "letterdesk_upstream_request_duration_seconds",
			Help:    "Duration of remote admin API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_upstream_retries_total",
			Help: "Total number of retried read requests to the remote admin API",
		},
		[]string{"endpoint"},
	)

	UpstreamUnauthorized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "letterdesk_upstream_unauthorized_total",
			Help: "Total number of 401 responses that forced a session logout",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "letterdesk_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"backend", "resource"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"backend", "resource"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_cache_invalidations_total",
			Help: "Total number of cache invalidations dispatched per mutation",
		},
		[]string{"mutation"},
	)

	CacheStaleWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_cache_stale_writes_total",
			Help: "Total number of loaded values discarded because an invalidation ran during the load",
		},
		[]string{"backend", "resource"},
	)

	// Fulfillment Metrics
	StatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_status_updates_total",
			Help: "Total number of physical request status updates",
		},
		[]string{"status", "result"}, // result: "success", "failure"
	)

	Verifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_verifications_total",
			Help: "Outcome of post-mutation verification reads",
		},
		[]string{"outcome"},
	)

	VerificationAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "letterdesk_verification_attempts",
			Help:    "Number of reads needed before verification settled",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	BulkItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_bulk_items_total",
			Help: "Total number of items processed by bulk updates",
		},
		[]string{"mode", "result"}, // mode: "native", "fanout"
	)

	BulkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "letterdesk_bulk_duration_seconds",
			Help:    "Duration of bulk updates in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// Statistics Metrics
	StatsSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_stats_source_total",
			Help: "Statistics results by source (server or client)",
		},
		[]string{"origin"},
	)

	DashboardRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_dashboard_refreshes_total",
			Help: "Total number of scheduled dashboard cache refreshes",
		},
		[]string{"result"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_events_published_total",
			Help: "Total number of events published on the in-process bus",
		},
		[]string{"topic", "result"},
	)

	// Console HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "letterdesk_http_requests_total",
			Help: "Total number of console HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "letterdesk_http_request_duration_seconds",
			Help:    "Duration of console HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordUpstreamRequest records one remote admin API call.
func RecordUpstreamRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	UpstreamRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	UpstreamRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStatusUpdate records a single status mutation result.
func RecordStatusUpdate(status string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	StatusUpdates.WithLabelValues(status, result).Inc()
}

// RecordVerification records a verification outcome and attempt count.
func RecordVerification(outcome string, attempts int) {
	Verifications.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		VerificationAttempts.Observe(float64(attempts))
	}
}

// RecordBulk records the item outcomes and duration of one bulk update.
func RecordBulk(mode string, updated, failed int, duration time.Duration) {
	BulkItems.WithLabelValues(mode, "success").Add(float64(updated))
	BulkItems.WithLabelValues(mode, "failure").Add(float64(failed))
	BulkDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordHTTPRequest records a console HTTP request.
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
