// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package client is the HTTP client for the remote admin REST API.

Every request carries the bearer token of the injected session.Session. A
401 response calls Session.HandleUnauthorized, which logs the operator out
and runs the registered callbacks, and the call returns an error matching
ErrUnauthorized.

# Responses

The API wraps payloads in {success, data, message, pagination}. A response
with success=false is returned as an *APIError even on HTTP 200. Physical
request payloads are passed through models.Normalize, so callers only see
canonical models.PhysicalRequest values regardless of which schema the
backend used.

# Retries

Only GET requests are retried, and only on 429, 502, 503 and 504. The delay
doubles from Config.RetryBaseDelay on each attempt, and a Retry-After header
overrides it. PATCH, POST, PUT and DELETE are sent exactly once: a transport
error on a mutation is returned to the caller, who decides what to do.

# Circuit Breaker

With Config.CircuitBreaker set, calls go through a sony/gobreaker breaker
that opens once at least 10 requests in a one-minute window have a failure
rate of 60% or more. Client errors (4xx) do not count as failures. While
open, calls fail fast with ErrCircuitOpen.
*/
package client
