// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package config provides centralized configuration management for Letterdesk.

Configuration is layered with Koanf v2. Later layers override earlier ones:

 1. Defaults: built-in values from defaultConfig()
 2. Config file: optional YAML file (CONFIG_PATH, ./config.yaml,
    /etc/letterdesk/config.yaml)
 3. Environment variables: explicit mapping table, unknown variables are
    ignored

# Configuration Structure

  - APIConfig: remote admin API base URL, timeout, GET retry policy
  - SessionConfig: persisted session store (badger)
  - CacheConfig: read cache backend (memory or redis) and TTL
  - FulfillmentConfig: bulk strategy, fan-out limits, verification policy
  - StatsConfig: server-first statistics and client fallback size
  - DashboardConfig: refresh schedule and default range
  - ServerConfig: console HTTP listener, CORS, rate limit
  - LoggingConfig: zerolog level and format

# Environment Variables

Remote API:
  - LETTERDESK_API_URL: base URL (default: http://localhost:5001/api)
  - LETTERDESK_API_TIMEOUT: per-request timeout (default: 15s)
  - LETTERDESK_API_MAX_RETRIES: retries for idempotent GETs (default: 3)

Cache:
  - CACHE_TYPE: memory or redis (default: memory)
  - CACHE_TTL: entry lifetime (default: 5m)
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB

Fulfillment:
  - FULFILLMENT_NATIVE_BULK: use the backend bulk endpoint (default: true)
  - FULFILLMENT_BULK_CONCURRENCY: fan-out workers (default: 4)
  - FULFILLMENT_VERIFY_MODE: sync or async (default: sync)
  - FULFILLMENT_VERIFY_BASE_DELAY: first verification delay (default: 300ms)

Server:
  - HTTP_LISTEN: listen address (default: :8080)
  - CORS_ORIGINS: comma-separated allowed origins
  - LOG_LEVEL, LOG_FORMAT

See envMappings in koanf.go for the complete table.

# Validation

Load validates the merged configuration and returns an error describing the
first invalid setting. Example:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load config")
	}
*/
package config
