// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package api provides the HTTP surface of the console: a small
backend-for-frontend that serves the operator UI and forwards to the remote
admin API through the client, fulfillment, stats, dashboard and console
services.

# Routes

Public:

	GET  /health, /health/live, /health/ready
	GET  /metrics
	POST /api/session/login
	POST /api/session/logout
	GET  /api/statuses
	GET  /api/statuses/{status}/next

Signed in (permission in brackets):

	GET    /api/requests, /api/requests/export        [letters.read]
	PATCH  /api/requests/{id}/status, /{id}/shipping  [letters.write]
	POST   /api/requests/bulk                         [letters.write]
	GET    /api/stats, /dashboard, /analytics         [dashboard.read]
	GET    /api/statistics, /events/recent            [dashboard.read]
	GET    /api/overview                              [dashboard.read]
	GET    /api/users/{id}/detail, /stats, /letters   [users.read]
	GET    /api/letters/physical[/{letterId}]         [letters.read]
	*      /api/letters, /api/users, /api/admins      [resource.action]

# Responses

Every JSON response uses the APIResponse envelope. Errors carry a stable
code (see the ErrCode constants); respondErr maps service and upstream
errors onto status codes:

  - validation failures and bad ranges or dates: 400 VALIDATION_ERROR
  - upstream 401 or no session: 401 UNAUTHORIZED
  - upstream 404 or unknown letter: 404 NOT_FOUND
  - open circuit breaker: 503 SERVICE_UNAVAILABLE
  - other upstream 4xx: passed through as UPSTREAM_REJECTED
  - upstream 5xx or transport errors: 502 UPSTREAM_FAILED

A status update answers 200 even when the read-back did not confirm it;
the body reports verified=false with a warning.

# Middleware

Request ids (X-Request-ID), panic recovery, CORS, per-IP rate limiting
(go-chi/httprate) and Prometheus request metrics labelled by route pattern.
*/
package api
