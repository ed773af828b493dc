// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package metrics provides Prometheus instrumentation for Letterdesk.

# Overview

The package provides metrics for:
  - Remote admin API calls (latency, status codes, retries)
  - Circuit breaker state transitions
  - Cache hits, misses and invalidations
  - Fulfillment status updates, verification outcomes and bulk items
  - Which source produced statistics (server or client)
  - Console HTTP surface latency

# Metrics Endpoint

Metrics are exposed by the console server at /metrics:

	curl http://localhost:8080/metrics

# Usage

Collectors are package-level promauto values. Prefer the Record helpers
so label values stay consistent:

	metrics.RecordUpstreamRequest("GET", "physical-requests", 200, time.Since(start))
	metrics.RecordVerification(metrics.VerifyMismatch)
*/
package metrics
