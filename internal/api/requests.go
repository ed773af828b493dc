// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/letterdesk/internal/models"
)

// maxBodyBytes bounds request bodies. The largest is a bulk update.
const maxBodyBytes = 1 << 20

// Query bounds shared by list endpoints.
const (
	defaultPageLimit = 20
	maxPageLimit     = 1000
)

// decodeJSON reads a single JSON object into v. On failure it writes the
// 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large", nil)
		case errors.Is(err, io.EOF):
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Request body is required", nil)
		default:
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body: "+err.Error(), nil)
		}
		return false
	}
	return true
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// clamp keeps n within [lo, hi].
func clamp(n, lo, hi int) int {
	switch {
	case n < lo:
		return lo
	case n > hi:
		return hi
	default:
		return n
	}
}

// listQuery reads the common list parameters. Page and limit are clamped
// rather than rejected.
func listQuery(r *http.Request) models.ListQuery {
	q := r.URL.Query()
	order := strings.ToLower(q.Get("order"))
	if order != "asc" && order != "desc" {
		order = ""
	}
	return models.ListQuery{
		Page:   clamp(getIntParam(r, "page", 1), 1, 1<<20),
		Limit:  clamp(getIntParam(r, "limit", defaultPageLimit), 1, maxPageLimit),
		Search: strings.TrimSpace(q.Get("search")),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
		Order:  order,
	}
}

// requestQuery reads the physical-request list parameters.
func requestQuery(r *http.Request) models.RequestQuery {
	q := r.URL.Query()
	return models.RequestQuery{
		ListQuery: listQuery(r),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
		Region:    q.Get("region"),
	}
}

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
