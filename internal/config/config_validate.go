// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package config

import (
	"fmt"
	"net"
	"net/url"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validCacheTypes = map[string]bool{
	"memory": true,
	"redis":  true,
}

var validVerifyModes = map[string]bool{
	"sync":  true,
	"async": true,
}

var validRanges = map[string]bool{
	"7d":  true,
	"30d": true,
	"90d": true,
	"all": true,
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateFulfillment(); err != nil {
		return err
	}

	if err := c.validateDashboard(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateAPI validates the remote API settings
func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("LETTERDESK_API_URL is required")
	}
	if err := validateHTTPURL(c.API.BaseURL, "LETTERDESK_API_URL"); err != nil {
		return fmt.Errorf("LETTERDESK_API_URL is invalid: %w", err)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("LETTERDESK_API_TIMEOUT must be positive")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("LETTERDESK_API_MAX_RETRIES cannot be negative")
	}
	if c.API.MaxRetries > 0 && c.API.RetryBaseDelay <= 0 {
		return fmt.Errorf("LETTERDESK_API_RETRY_BASE_DELAY must be positive when retries are enabled")
	}
	return nil
}

// validateCache validates cache backend selection
func (c *Config) validateCache() error {
	if !validCacheTypes[c.Cache.Type] {
		return fmt.Errorf("CACHE_TYPE must be one of: memory, redis")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.Type == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when CACHE_TYPE=redis")
	}
	if c.Cache.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB cannot be negative")
	}
	return nil
}

// validateFulfillment validates bulk and verification settings
func (c *Config) validateFulfillment() error {
	f := c.Fulfillment
	if f.BulkConcurrency < 1 {
		return fmt.Errorf("FULFILLMENT_BULK_CONCURRENCY must be at least 1")
	}
	if f.BulkRatePerSecond < 0 {
		return fmt.Errorf("FULFILLMENT_BULK_RATE_PER_SECOND cannot be negative")
	}
	if !validVerifyModes[f.VerifyMode] {
		return fmt.Errorf("FULFILLMENT_VERIFY_MODE must be one of: sync, async")
	}
	if f.VerifyAttempts < 1 || f.VerifyAttempts > 10 {
		return fmt.Errorf("FULFILLMENT_VERIFY_ATTEMPTS must be between 1 and 10")
	}
	if f.VerifyBaseDelay <= 0 {
		return fmt.Errorf("FULFILLMENT_VERIFY_BASE_DELAY must be positive")
	}
	if c.Stats.FallbackLimit < 1 {
		return fmt.Errorf("STATS_FALLBACK_LIMIT must be at least 1")
	}
	return nil
}

// validateDashboard validates the refresh schedule and default range
func (c *Config) validateDashboard() error {
	if c.Dashboard.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Dashboard.RefreshSchedule); err != nil {
			return fmt.Errorf("DASHBOARD_REFRESH_SCHEDULE is invalid: %w", err)
		}
	}
	if !validRanges[c.Dashboard.DefaultRange] {
		return fmt.Errorf("DASHBOARD_DEFAULT_RANGE must be one of: 7d, 30d, 90d, all")
	}
	return nil
}

// validateServer validates the console HTTP listener
func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("HTTP_LISTEN must be host:port: %w", err)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative")
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			continue
		}
		if err := validateHTTPURL(origin, "CORS_ORIGINS"); err != nil {
			return fmt.Errorf("CORS_ORIGINS entry %q is invalid: %w", origin, err)
		}
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL validates that a URL is an http(s) URL with a host and no
// query string. Paths are allowed since the API base carries a prefix.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}
