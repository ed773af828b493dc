// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tomtom215/letterdesk/internal/logging"
)

// scanBatch is the COUNT hint for SCAN during prefix deletion.
const scanBatch = 100

// NewRedisClient connects to redis. It returns nil, not an error, when no
// address is configured or the server does not answer a ping, so the caller
// can fall back to memory.
func NewRedisClient(ctx context.Context, cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logging.Info().Msg("Redis address not configured")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Redis ping failed")
		_ = rdb.Close()
		return nil
	}

	logging.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("Connected to Redis")
	return rdb
}

// RedisStore is a Store shared between console instances.
//
// Epochs are tracked per process. A write racing an invalidation issued by
// another console instance is not detected; that instance's entries still
// expire with their TTL.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string

	// epochMu is held for reading across a conditional write and for
	// writing while an epoch advances, so a deletion cannot slip between
	// the epoch check and the SET.
	epochMu sync.RWMutex
	epochs  epochs
}

// NewRedisStore wraps client. Every key is prefixed with namespace+":".
func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "letterdesk"
	}
	return &RedisStore{client: client, namespace: namespace, epochs: newEpochs()}
}

// Backend implements Store.
func (r *RedisStore) Backend() string { return string(TypeRedis) }

func (r *RedisStore) key(k string) string {
	return r.namespace + separator + k
}

// Get implements Store.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set implements Store.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetIfEpoch implements Store.
func (r *RedisStore) SetIfEpoch(ctx context.Context, key string, value []byte, ttl time.Duration, epoch uint64) (bool, error) {
	r.epochMu.RLock()
	defer r.epochMu.RUnlock()
	if r.epochs.of(key) != epoch {
		return false, nil
	}
	if err := r.Set(ctx, key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

// Epoch implements Store.
func (r *RedisStore) Epoch(key string) uint64 {
	r.epochMu.RLock()
	defer r.epochMu.RUnlock()
	return r.epochs.of(key)
}

// DeletePrefix implements Store using SCAN so large keyspaces are not
// blocked. The epoch advances before any key is removed: a conditional
// write that already passed its check lands before the deletion, and any
// later one is refused.
func (r *RedisStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	r.epochMu.Lock()
	r.epochs.bump(prefix)
	r.epochMu.Unlock()

	full := r.key(prefix)
	removed, err := r.client.Del(ctx, full).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del %s: %w", prefix, err)
	}
	n, err := r.deleteMatching(ctx, escapeGlob(full)+separator+"*")
	return int(removed) + n, err
}

// Clear implements Store. Only keys in this store's namespace are removed.
func (r *RedisStore) Clear(ctx context.Context) error {
	r.epochMu.Lock()
	r.epochs.bumpAll()
	r.epochMu.Unlock()

	_, err := r.deleteMatching(ctx, escapeGlob(r.namespace)+separator+"*")
	return err
}

// Close implements Store.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) deleteMatching(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// escapeGlob escapes redis glob metacharacters.
func escapeGlob(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`).Replace(s)
}

var _ Store = (*RedisStore)(nil)
