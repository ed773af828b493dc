// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package main is the entry point for the Letterdesk console server.

Letterdesk is the operator console for physical letter fulfillment. It
fronts the remote admin API: it lists physical requests aggregated by
letter, runs status updates with read-back verification, fans bulk updates
out under a concurrency cap and serves dashboard statistics, all through a
cache that every mutation invalidates.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("letterdesk")
	├── BackgroundSupervisor ("background-layer")
	│   ├── Event recorder (watermill gochannel subscriber)
	│   └── Dashboard refresher (robfig/cron)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog, also bridged to slog for suture
 3. Cache: in-memory, or Redis when CACHE_TYPE=redis
 4. Session: Casbin authorizer plus optional BadgerDB persistence
 5. Remote API client with retries and circuit breaker
 6. Event bus, invalidation dispatcher and services
 7. HTTP router and supervisor tree

# Configuration

	LETTERDESK_API_URL=https://admin.example.com/api
	CACHE_TYPE=redis REDIS_ADDR=redis:6379
	SESSION_PERSIST=true SESSION_STORE_PATH=/data/letterdesk/session
	HTTP_LISTEN=:8080

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within HTTP_SHUTDOWN_TIMEOUT, then the session store
and cache are closed.
*/
package main
