// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Uptime        float64 `json:"uptime"`
	Authenticated bool    `json:"authenticated"`
	Upstream      string  `json:"upstream"`
	CacheBackend  string  `json:"cacheBackend,omitempty"`
}

// breakerOpen is the circuit breaker state name while calls are rejected.
const breakerOpen = "open"

func (h *Handler) upstreamState() string {
	if h.upstream == nil {
		return "unknown"
	}
	return h.upstream.BreakerState()
}

// Health handles health check requests. The console is degraded while the
// remote API circuit breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	upstream := h.upstreamState()
	health := HealthStatus{
		Status:        "healthy",
		Version:       h.version,
		Uptime:        time.Since(h.startTime).Seconds(),
		Authenticated: h.session.IsAuthenticated(),
		Upstream:      upstream,
	}
	if upstream == breakerOpen {
		health.Status = "degraded"
	}
	if h.cache != nil {
		health.CacheBackend = h.cache.Backend()
	}
	respondData(w, r, health)
}

// HealthLive handles liveness check requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness check requests. It returns 503 while the
// remote API circuit breaker is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if upstream := h.upstreamState(); upstream == breakerOpen {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Admin API circuit breaker is open", map[string]string{"upstream": upstream})
		return
	}
	respondData(w, r, map[string]bool{"ready": true})
}
