// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/letterdesk/config.yaml",
	"/etc/letterdesk/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:5001/api",
			Timeout:        15 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: 500 * time.Millisecond,
			CircuitBreaker: true,
		},
		Session: SessionConfig{
			Persist:   true,
			StorePath: "/data/letterdesk/session",
		},
		Cache: CacheConfig{
			Type:      "memory",
			TTL:       5 * time.Minute,
			Namespace: "letterdesk",
		},
		Fulfillment: FulfillmentConfig{
			NativeBulk:        true,
			BulkConcurrency:   4,
			BulkRatePerSecond: 10,
			VerifyMode:        "sync",
			VerifyAttempts:    3,
			VerifyBaseDelay:   300 * time.Millisecond,
		},
		Stats: StatsConfig{
			PreferServer:  true,
			FallbackLimit: 1000,
		},
		Dashboard: DashboardConfig{
			RefreshSchedule: "@every 30s", // matches the console's refetch interval
			DefaultRange:    "30d",
		},
		Server: ServerConfig{
			Listen:             ":8080",
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			CORSOrigins:        []string{"http://localhost:3000"},
			RateLimitPerMinute: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with Koanf v2 from defaults, an optional YAML
// file and environment variables, in increasing priority, then validates
// it.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment. LETTERDESK_API_URL -> api.base_url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings; YAML values are already slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Remote API
	"letterdesk_api_url":              "api.base_url",
	"letterdesk_api_timeout":          "api.timeout",
	"letterdesk_api_max_retries":      "api.max_retries",
	"letterdesk_api_retry_base_delay": "api.retry_base_delay",
	"letterdesk_api_circuit_breaker":  "api.circuit_breaker",

	// Session
	"session_persist":    "session.persist",
	"session_store_path": "session.store_path",

	// Cache
	"cache_type":      "cache.type",
	"cache_ttl":       "cache.ttl",
	"cache_namespace": "cache.namespace",
	"redis_addr":      "cache.redis_addr",
	"redis_password":  "cache.redis_password",
	"redis_db":        "cache.redis_db",

	// Fulfillment
	"fulfillment_native_bulk":          "fulfillment.native_bulk",
	"fulfillment_bulk_concurrency":     "fulfillment.bulk_concurrency",
	"fulfillment_bulk_rate_per_second": "fulfillment.bulk_rate_per_second",
	"fulfillment_verify_mode":          "fulfillment.verify_mode",
	"fulfillment_verify_attempts":      "fulfillment.verify_attempts",
	"fulfillment_verify_base_delay":    "fulfillment.verify_base_delay",

	// Statistics and dashboard
	"stats_prefer_server":        "stats.prefer_server",
	"stats_fallback_limit":       "stats.fallback_limit",
	"dashboard_refresh_schedule": "dashboard.refresh_schedule",
	"dashboard_default_range":    "dashboard.default_range",

	// Server
	"http_listen":           "server.listen",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_per_minute": "server.rate_limit_per_minute",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - LETTERDESK_API_URL -> api.base_url
//   - CACHE_TYPE -> cache.type
//   - FULFILLMENT_VERIFY_MODE -> fulfillment.verify_mode
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
