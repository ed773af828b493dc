// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package config

import "time"

// Config holds all application configuration.
type Config struct {
	API         APIConfig         `koanf:"api"`
	Session     SessionConfig     `koanf:"session"`
	Cache       CacheConfig       `koanf:"cache"`
	Fulfillment FulfillmentConfig `koanf:"fulfillment"`
	Stats       StatsConfig       `koanf:"stats"`
	Dashboard   DashboardConfig   `koanf:"dashboard"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// APIConfig configures the remote admin API client.
type APIConfig struct {
	// BaseURL is the API root, including its path prefix.
	// Default: http://localhost:5001/api
	BaseURL string `koanf:"base_url"`

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries applies to idempotent GETs only. Mutations are never
	// retried.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelay is the first backoff delay; each retry doubles it.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// CircuitBreaker enables the breaker around the remote API.
	CircuitBreaker bool `koanf:"circuit_breaker"`
}

// SessionConfig configures session persistence.
type SessionConfig struct {
	// Persist stores the session across restarts.
	Persist bool `koanf:"persist"`

	// StorePath is the badger directory. Empty selects an in-memory store.
	StorePath string `koanf:"store_path"`
}

// CacheConfig configures the read cache.
type CacheConfig struct {
	// Type is memory or redis.
	Type          string        `koanf:"type"`
	TTL           time.Duration `koanf:"ttl"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	Namespace     string        `koanf:"namespace"`
}

// FulfillmentConfig configures status mutations.
type FulfillmentConfig struct {
	// NativeBulk sends bulk updates to the backend's bulk endpoint instead of
	// fanning out per-item updates.
	NativeBulk bool `koanf:"native_bulk"`

	// BulkConcurrency bounds concurrent per-item updates during fan-out.
	BulkConcurrency int `koanf:"bulk_concurrency"`

	// BulkRatePerSecond paces fan-out requests. 0 disables pacing.
	BulkRatePerSecond float64 `koanf:"bulk_rate_per_second"`

	// VerifyMode is sync or async.
	VerifyMode string `koanf:"verify_mode"`

	// VerifyAttempts is the number of read-back polls after a mutation.
	VerifyAttempts int `koanf:"verify_attempts"`

	// VerifyBaseDelay is the wait before the first poll; later polls double
	// it.
	VerifyBaseDelay time.Duration `koanf:"verify_base_delay"`
}

// StatsConfig configures the statistics source.
type StatsConfig struct {
	PreferServer  bool `koanf:"prefer_server"`
	FallbackLimit int  `koanf:"fallback_limit"`
}

// DashboardConfig configures dashboard caching.
type DashboardConfig struct {
	// RefreshSchedule is a cron spec. Empty uses the refresher default.
	RefreshSchedule string `koanf:"refresh_schedule"`
	DefaultRange    string `koanf:"default_range"`
}

// ServerConfig configures the console HTTP listener.
type ServerConfig struct {
	Listen             string        `koanf:"listen"`
	ReadTimeout        time.Duration `koanf:"read_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins        []string      `koanf:"cors_origins"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
