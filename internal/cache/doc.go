// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package cache holds the console's read cache and its invalidation policy.

# Overview

Reads of remote collections (physical request pages, letter summaries,
statistics, dashboard data) are cached under hierarchical keys such as

	admin:physical-requests:3f2a...
	admin:physical-letters:stats
	admin:physical-letters:dashboard:7d

Mutations never patch cached values. Instead, each mutation kind is
declared once in an InvalidationTable together with the key prefixes it
invalidates, and the Dispatcher drops every entry under those prefixes so
the next read goes back to the remote API.

	d := cache.NewDispatcher(store, cache.DefaultInvalidationTable())
	if err := d.Invalidate(ctx, cache.MutationUpdateStatus); err != nil {
	    return err
	}

# Backends

  - MemoryStore: process-local TTL map (default).
  - RedisStore: shared cache for several console instances. When the
    configured address is empty or unreachable, Open falls back to memory.

# Read-Through Helper

GetOrLoad wraps the common get, miss, load, set sequence with JSON encoding
so both backends store the same bytes:

	page, err := cache.GetOrLoad(ctx, store, key, ttl, func(ctx context.Context) (*models.RequestPage, error) {
	    return api.ListPhysicalRequests(ctx, query)
	})
*/
package cache
