// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

// Package stats derives physical-letter statistics.
//
// Compute and FilterByDateRange are pure functions over a request
// collection. Service decides where numbers come from: the backend's
// pre-aggregated endpoint is authoritative when it answers, and the
// client-side computation over a capped list fetch is the fallback. Every
// result records which source produced it.
//
// # Date Filtering
//
// Requests with a missing or unparseable requestedAt are excluded from every
// bounded range. Only the "all" range returns them.
package stats
