// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
Package supervisor runs letterdesk's long-lived services under a suture v4
supervisor tree.

# Overview

	RootSupervisor ("letterdesk")
	├── BackgroundSupervisor ("background-layer")
	│   ├── event-recorder
	│   └── dashboard-refresher
	└── APISupervisor ("api-layer")
	    └── http-server

Crashed services are restarted with backoff. The layers count failures
independently, so a refresher that keeps failing against an unavailable
backend never restarts the HTTP server.

# Logging

Supervisor events (service failures, restarts, backoff) go through
sutureslog into the slog handler passed to NewSupervisorTree. In the
binary that handler is logging.NewSlogHandler, so supervisor events land in
the same zerolog stream as everything else.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddBackgroundService(recorder)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
