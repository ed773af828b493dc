// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"net/http"

	"github.com/tomtom215/letterdesk/internal/stats"
)

// rangeParam reads the range query parameter, falling back to the
// configured default.
func (h *Handler) rangeParam(r *http.Request) (stats.Range, error) {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return h.defaultRange, nil
	}
	return stats.ParseRange(raw)
}

// Stats returns status counts and the completion rate for a range.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeParam(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	res, err := h.stats.Stats(r.Context(), rng)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, res)
}

// Overview returns the console home page: totals, physical fulfillment
// counts and the most recent users and letters.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	data, err := h.console.Overview(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, data)
}

// Dashboard returns the backend's physical-letter dashboard for a range.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeParam(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	data, err := h.dashboard.Dashboard(r.Context(), rng)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, data)
}

// Analytics returns the physical-letter analytics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.Analytics(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, data)
}

// Statistics returns platform statistics between start and end
// (YYYY-MM-DD, inclusive).
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := h.dashboard.Statistics(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, data)
}
