// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/console"
	"github.com/tomtom215/letterdesk/internal/dashboard"
	"github.com/tomtom215/letterdesk/internal/fulfillment"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/stats"
	"github.com/tomtom215/letterdesk/internal/validation"
)

// APIResponse is the envelope of every console response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details interface{} `json:"details,omitempty"`
}

// APIMeta contains optional response metadata.
type APIMeta struct {
	RequestID  string             `json:"request_id,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Count      *int               `json:"count,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeUpstreamRejected   = "UPSTREAM_REJECTED"
	ErrCodeUpstreamFailed     = "UPSTREAM_FAILED"
)

// respondJSON writes response with status. API responses carry operator
// data, so they are never cached by intermediaries.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	if response.Meta == nil {
		response.Meta = &APIMeta{}
	}
	response.Meta.Timestamp = time.Now().UTC()
	response.Meta.RequestID = logging.RequestIDFromContext(r.Context())

	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a 200 success envelope.
func respondData(w http.ResponseWriter, r *http.Request, data interface{}) {
	respondJSON(w, r, http.StatusOK, &APIResponse{Success: true, Data: data})
}

// respondList writes a success envelope with the item count and, when the
// upstream paginated, its pagination.
func respondList(w http.ResponseWriter, r *http.Request, data interface{}, count int, pagination *models.Pagination) {
	respondJSON(w, r, http.StatusOK, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Count: &count, Pagination: pagination},
	})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	respondJSON(w, r, status, &APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message, Details: details},
	})
}

// respondErr maps a service error onto a status code and error code.
// Upstream 5xx and transport failures are logged; caller mistakes are not.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	var apiErr *client.APIError
	var urlErr *url.Error

	switch {
	case errors.As(err, &verr):
		payload := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, payload.Message, payload.Details)
	case errors.Is(err, stats.ErrInvalidRange), errors.Is(err, dashboard.ErrInvalidDate):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, console.ErrNoSession):
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "Sign in required", nil)
	case errors.Is(err, client.ErrNotFound), errors.Is(err, fulfillment.ErrLetterNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Resource not found", nil)
	case errors.Is(err, console.ErrDeleteSelf):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.Is(err, client.ErrCircuitOpen):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Admin API is unavailable, retry shortly", nil)
	case errors.As(err, &apiErr) && !apiErr.Temporary():
		respondError(w, r, apiErr.StatusCode, ErrCodeUpstreamRejected, apiErr.Message, nil)
	case errors.As(err, &apiErr):
		logging.Ctx(r.Context()).Error().Err(err).Int("upstream_status", apiErr.StatusCode).Msg("Admin API failure")
		respondError(w, r, http.StatusBadGateway, ErrCodeUpstreamFailed, "Admin API request failed", nil)
	case errors.As(err, &urlErr):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Admin API unreachable")
		respondError(w, r, http.StatusBadGateway, ErrCodeUpstreamFailed, "Admin API is unreachable", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Internal error", nil)
	}
}
