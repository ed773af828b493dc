// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package dashboard serves the fulfillment dashboard, analytics and
date-bounded statistics through the shared cache, and keeps those entries
warm with a cron-scheduled Refresher.

# Cache Keys

	["admin","physical-letters","dashboard",<range>]
	["admin","physical-letters","analytics"]
	["admin","statistics",<start>,<end>]

A status mutation invalidates the physical-letters prefix, so the next
dashboard read after an update always reaches the backend.

# Refresher

The Refresher follows the Start/Stop lifecycle and is run under the
supervisor tree through a scheduler service wrapper. Each run re-warms
statistics and the dashboard for every configured range in parallel.
Overlapping runs are skipped.
*/
package dashboard
