// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/fulfillment"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/status"
)

// statusChangeBody is the body of PATCH /api/requests/{id}/status.
type statusChangeBody struct {
	Status   string `json:"status"`
	Note     string `json:"note"`
	LetterID string `json:"letterId"`
}

// statusOption is one entry of the next-status suggestions.
type statusOption struct {
	Value status.Status `json:"value"`
	Label string        `json:"label"`
}

// nextStatuses is the payload of GET /api/statuses/{status}/next.
type nextStatuses struct {
	Current statusOption   `json:"current"`
	Next    []statusOption `json:"next"`
}

// PhysicalLetters lists physical requests aggregated per letter. The status
// parameter filters on each letter's current status.
func (h *Handler) PhysicalLetters(w http.ResponseWriter, r *http.Request) {
	q := requestQuery(r)
	want := q.Status
	if want != "" {
		want = string(status.Map(want))
	}
	q.Status = ""
	q.Page, q.Limit = 0, 0

	letters, err := h.reader.Letters(r.Context(), q, want)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, r, letters, len(letters), nil)
}

// PhysicalLetter returns one letter's aggregate.
func (h *Handler) PhysicalLetter(w http.ResponseWriter, r *http.Request) {
	letter, err := h.reader.Letter(r.Context(), chi.URLParam(r, "letterId"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, letter)
}

// Requests lists one page of physical requests.
func (h *Handler) Requests(w http.ResponseWriter, r *http.Request) {
	page, err := h.reader.Requests(r.Context(), requestQuery(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, r, page.Requests, len(page.Requests), page.Pagination)
}

// ExportRequests returns every matching request as JSON, or as CSV with
// format=csv.
func (h *Handler) ExportRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := client.ExportQuery{
		Search:   query.Get("search"),
		Status:   query.Get("status"),
		DateFrom: query.Get("dateFrom"),
		DateTo:   query.Get("dateTo"),
	}
	rows, err := h.reader.Export(r.Context(), q)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("search", sanitizeLogValue(q.Search)).
		Int("rows", len(rows)).
		Msg("Physical requests exported")

	if query.Get("format") != "csv" {
		respondList(w, r, rows, len(rows), nil)
		return
	}
	writeRequestsCSV(w, r, rows)
}

var csvHeader = []string{
	"requestId", "letterId", "title", "status", "recipient", "phone",
	"zipCode", "address1", "address2", "requestedAt", "updatedAt",
	"carrier", "trackingNumber", "total",
}

func writeRequestsCSV(w http.ResponseWriter, r *http.Request, rows []models.PhysicalRequest) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="physical-requests.csv"`)
	w.Header().Set("Cache-Control", "no-store")

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, p := range rows {
		var carrier, tracking, total string
		if p.ShippingInfo != nil {
			carrier, tracking = p.ShippingInfo.Carrier, p.ShippingInfo.TrackingNumber
		}
		if p.Cost != nil {
			total = p.Cost.Total.StringFixed(2)
		}
		_ = cw.Write([]string{
			p.RequestID, p.LetterID, p.Title, string(p.Status),
			p.Recipient.Name, p.Recipient.Phone,
			p.ShippingAddress.ZipCode, p.ShippingAddress.Line1, p.ShippingAddress.Line2,
			formatTime(p.RequestedAt), formatTime(p.LastUpdatedAt),
			carrier, tracking, total,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write CSV export")
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// UpdateRequestStatus runs the mutate, invalidate, verify sequence for one
// request. Responses are 200 whether or not verification matched; a stale
// read-back shows up as verified=false with a warning.
func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	var body statusChangeBody
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.fulfillment.UpdateStatus(r.Context(), fulfillment.UpdateRequest{
		RequestID: chi.URLParam(r, "id"),
		LetterID:  body.LetterID,
		Status:    status.Status(body.Status),
		Note:      body.Note,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, res)
}

// UpdateRequestShipping records tracking data on a request.
func (h *Handler) UpdateRequestShipping(w http.ResponseWriter, r *http.Request) {
	var body fulfillment.ShippingUpdate
	if !decodeJSON(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.fulfillment.UpdateShipping(r.Context(), id, body); err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, map[string]string{"id": id})
}

// BulkUpdateRequests applies one status to many requests. Partial failure
// is a 200 carrying the failed ids.
func (h *Handler) BulkUpdateRequests(w http.ResponseWriter, r *http.Request) {
	var body fulfillment.BulkRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := h.fulfillment.BulkUpdate(r.Context(), body)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, res)
}

// NextStatuses suggests the statuses an operator may move a request to. The
// path status may be any backend value; it is mapped first.
func (h *Handler) NextStatuses(w http.ResponseWriter, r *http.Request) {
	current := status.Map(chi.URLParam(r, "status"))
	next := status.NextStatuses(current)

	out := nextStatuses{
		Current: statusOption{Value: current, Label: current.Label()},
		Next:    make([]statusOption, len(next)),
	}
	for i, s := range next {
		out.Next[i] = statusOption{Value: s, Label: s.Label()}
	}
	respondData(w, r, out)
}

// StatusVocabulary lists the canonical statuses with their labels.
func (h *Handler) StatusVocabulary(w http.ResponseWriter, r *http.Request) {
	canonical := status.Canonical()
	out := make([]statusOption, len(canonical))
	for i, s := range canonical {
		out[i] = statusOption{Value: s, Label: s.Label()}
	}
	respondList(w, r, out, len(out), nil)
}

// RecentEvents lists the newest fulfillment events, newest first.
func (h *Handler) RecentEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		respondList(w, r, []interface{}{}, 0, nil)
		return
	}
	limit := clamp(getIntParam(r, "limit", 50), 1, 500)
	recent := h.events.Recent(limit)
	respondList(w, r, recent, len(recent), nil)
}
