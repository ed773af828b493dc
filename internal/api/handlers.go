// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"errors"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/console"
	"github.com/tomtom215/letterdesk/internal/dashboard"
	"github.com/tomtom215/letterdesk/internal/events"
	"github.com/tomtom215/letterdesk/internal/fulfillment"
	"github.com/tomtom215/letterdesk/internal/session"
	"github.com/tomtom215/letterdesk/internal/stats"
)

// RecentEvents lists recently published fulfillment events.
type RecentEvents interface {
	Recent(limit int) []events.Envelope
}

var _ RecentEvents = (*events.Recorder)(nil)

// UpstreamStatus reports the remote API circuit breaker state.
type UpstreamStatus interface {
	BreakerState() string
}

var _ UpstreamStatus = (*client.Client)(nil)

// Deps are the services the console handlers serve.
type Deps struct {
	Fulfillment *fulfillment.Service
	Reader      *fulfillment.Reader
	Stats       *stats.Service
	Dashboard   *dashboard.Service
	Console     *console.Service
	Session     *session.Session

	// Events and Upstream are optional.
	Events   RecentEvents
	Upstream UpstreamStatus
	Cache    cache.Store

	DefaultRange stats.Range
	Version      string
}

// Handler serves the console HTTP API.
type Handler struct {
	fulfillment *fulfillment.Service
	reader      *fulfillment.Reader
	stats       *stats.Service
	dashboard   *dashboard.Service
	console     *console.Service
	session     *session.Session
	events      RecentEvents
	upstream    UpstreamStatus
	cache       cache.Store

	defaultRange stats.Range
	version      string
	startTime    time.Time
}

// NewHandler creates a handler.
func NewHandler(d Deps) (*Handler, error) {
	switch {
	case d.Fulfillment == nil, d.Reader == nil:
		return nil, errors.New("api: fulfillment services are required")
	case d.Stats == nil, d.Dashboard == nil:
		return nil, errors.New("api: stats and dashboard services are required")
	case d.Console == nil, d.Session == nil:
		return nil, errors.New("api: console service and session are required")
	}
	if d.DefaultRange == "" {
		d.DefaultRange = stats.RangeAll
	}
	if d.Version == "" {
		d.Version = "dev"
	}
	return &Handler{
		fulfillment:  d.Fulfillment,
		reader:       d.Reader,
		stats:        d.Stats,
		dashboard:    d.Dashboard,
		console:      d.Console,
		session:      d.Session,
		events:       d.Events,
		upstream:     d.Upstream,
		cache:        d.Cache,
		defaultRange: d.DefaultRange,
		version:      d.Version,
		startTime:    time.Now(),
	}, nil
}
