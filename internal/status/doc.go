// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

// Package status defines the physical-letter fulfillment vocabulary.
//
// Two vocabularies are in use against the backend:
//
//   - Canonical: none, requested, writing, sent, delivered. This is what the
//     console shows and what aggregation and statistics count.
//   - Extended: requested, confirmed, processing, writing, sent, delivered,
//     failed, cancelled. One backend variant reports these directly.
//
// # Mapping
//
// Map converts any backend string into the canonical set. It is total and
// never fails: legacy values such as "approved" or "processing" fold into
// writing, and anything unrecognised becomes requested.
//
//	status.Map("approved")  // writing
//	status.Map("")          // requested
//	status.Map("delivered") // delivered
//
// # Transitions
//
// NextStatuses returns the states an operator may move an item to next:
//
//	requested -> writing, none
//	writing   -> sent
//	sent      -> delivered
//	delivered -> (terminal)
//
// The table only drives which choices the console offers. The backend
// decides whether a transition is accepted, and responses that disagree
// with the table are never rejected client-side.
package status
