// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package cache

import (
	"context"
	"time"

	"github.com/tomtom215/letterdesk/internal/logging"
)

// Store is a byte-oriented cache backend.
type Store interface {
	// Get returns the value for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfEpoch stores value only while key is still at epoch, i.e. no
	// DeletePrefix or Clear covering key ran since Epoch returned it. It
	// reports whether the value was stored.
	SetIfEpoch(ctx context.Context, key string, value []byte, ttl time.Duration, epoch uint64) (bool, error)

	// Epoch returns the invalidation generation of key.
	Epoch(key string) uint64

	// DeletePrefix removes key prefix and every key below it and returns
	// the number of removed entries. It advances the epoch of every key
	// under prefix.
	DeletePrefix(ctx context.Context, prefix string) (int, error)

	// Clear removes every entry owned by this store and advances every
	// epoch.
	Clear(ctx context.Context) error

	// Backend names the implementation for logs and metrics.
	Backend() string

	// Close releases background resources.
	Close() error
}

// Type selects a Store implementation.
type Type string

const (
	TypeMemory Type = "memory"
	TypeRedis  Type = "redis"
)

// Config holds cache configuration.
type Config struct {
	Type          Type
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Namespace prefixes every redis key.
	Namespace string
}

// DefaultTTL applies when Config.TTL is not positive.
const DefaultTTL = 5 * time.Minute

// Open creates the configured store. A redis store that cannot be reached
// degrades to a memory store and logs a warning rather than failing, so the
// console keeps working without a shared cache.
func Open(ctx context.Context, cfg Config) Store {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	if cfg.Type == TypeRedis {
		client := NewRedisClient(ctx, cfg)
		if client != nil {
			return NewRedisStore(client, cfg.Namespace)
		}
		logging.Warn().Str("addr", cfg.RedisAddr).Msg("Redis unavailable, using in-memory cache")
	}
	return NewMemoryStore(cfg.TTL)
}
