// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package middleware provides infrastructure HTTP middleware for the console.

Key Components:

  - RequestID: per-request id, reused from a well-formed X-Request-ID, plus a
    fresh correlation id in the logging context
  - PrometheusMetrics: request count and latency labelled by chi route
    pattern

Both are plain func(http.Handler) http.Handler and mount with chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Handlers read the id back with GetRequestID, or log through logging.Ctx,
which picks up both ids:

	logging.Ctx(r.Context()).Info().Msg("Bulk update accepted")

See Also:

  - internal/api: the console router that mounts these
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
