// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package services adapts letterdesk components to suture.Service.

# Wrappers

  - HTTPServerService: the console HTTP server. ListenAndServe runs in a
    goroutine; cancellation triggers Shutdown with its own timeout.
  - SchedulerService: any Start/Stop component, such as the dashboard
    refresher.

Components that already block in Serve(ctx), like the event recorder, are
added to the tree directly.

# Error Semantics

Returning an error from Serve tells suture the service crashed and should
be restarted with backoff. Returning ctx.Err() after cancellation is a
normal stop.

# Usage

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Listen, 10*time.Second))
	tree.AddBackgroundService(services.NewSchedulerService(refresher, "dashboard-refresher"))
	tree.AddBackgroundService(recorder)
*/
package services
