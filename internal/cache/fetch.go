// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
)

// Loader fetches a value on a cache miss.
type Loader[T any] func(ctx context.Context) (T, error)

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Loader errors are returned unchanged and nothing is cached. Cache
// backend errors are logged and treated as misses so a broken cache never
// blocks reads.
//
// The result of a load that overlapped an invalidation of key is returned
// to the caller but not cached; the next read fetches again.
func GetOrLoad[T any](ctx context.Context, store Store, key Key, ttl time.Duration, load Loader[T]) (T, error) {
	k := key.String()
	resource := resourceLabel(key)
	epoch := store.Epoch(k)

	if data, ok, err := store.Get(ctx, k); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", k).Msg("Cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.CacheHits.WithLabelValues(store.Backend(), resource).Inc()
			return v, nil
		}
		logging.Ctx(ctx).Warn().Str("key", k).Msg("Discarding undecodable cache entry")
	}
	metrics.CacheMisses.WithLabelValues(store.Backend(), resource).Inc()

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if _, err := PutIfCurrent(ctx, store, key, ttl, v, epoch); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", k).Msg("Cache write failed")
	}
	return v, nil
}

// Epoch returns the invalidation generation of key. Read it before a fetch
// and pass it to PutIfCurrent after.
func Epoch(store Store, key Key) uint64 {
	return store.Epoch(key.String())
}

// PutIfCurrent encodes v and stores it unless key was invalidated since
// epoch was read. It reports whether v was stored.
func PutIfCurrent[T any](ctx context.Context, store Store, key Key, ttl time.Duration, v T, epoch uint64) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("encode cache value: %w", err)
	}
	stored, err := store.SetIfEpoch(ctx, key.String(), data, ttl, epoch)
	if err != nil {
		return false, err
	}
	if !stored {
		metrics.CacheStaleWrites.WithLabelValues(store.Backend(), resourceLabel(key)).Inc()
		logging.Ctx(ctx).Debug().Str("key", key.String()).Msg("Discarding value loaded across an invalidation")
	}
	return stored, nil
}

// Put encodes v as JSON and stores it unconditionally.
func Put[T any](ctx context.Context, store Store, key Key, ttl time.Duration, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return store.Set(ctx, key.String(), data, ttl)
}

// resourceLabel keeps metric cardinality bounded by dropping parameter
// segments. Physical-letter keys keep their third segment (stats,
// dashboard, ...) because it names the resource.
func resourceLabel(key Key) string {
	n := 2
	if key.HasPrefix(KeyPhysicalLetters) {
		n = 3
	}
	if len(key) < n {
		n = len(key)
	}
	return key[:n].String()
}
