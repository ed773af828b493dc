// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package events is the console's in-process event bus.

Two topics are published:

  - fulfillment.status_changed: a status mutation accepted by the remote API
  - cache.invalidated: keys dropped by the cache dispatcher

The bus is a watermill GoChannel, so nothing leaves the process. Payloads
are JSON with a schema_version field. A Recorder subscribes to both topics
and keeps a bounded ring of recent events for the activity feed of the
HTTP surface.

# Wiring

	bus := events.NewBus(events.BusConfig{})
	dispatcher.Subscribe(bus.InvalidationListener())
	recorder := events.NewRecorder(bus, 0)
	supervisor.Add(recorder)
*/
package events
