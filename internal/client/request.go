// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
request.go - Admin API Request Helpers

Builds, sends and decodes requests to the remote admin API.

Request Config Options:
  - method: HTTP method (GET, PATCH, POST, PUT, DELETE)
  - path: endpoint path relative to the base URL, ids already escaped
  - endpoint: bounded label for metrics and logs (e.g. "physical-requests/:id")
  - query: URL query parameters
  - body: JSON request body, nil for none

Only GET requests go through the retry loop. Everything runs inside the
circuit breaker when one is configured.
*/

//nolint:staticcheck // File documentation, not package doc
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
	"github.com/tomtom215/letterdesk/internal/models"
)

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 16 << 20

// requestConfig holds configuration for building HTTP requests
type requestConfig struct {
	method   string
	path     string
	endpoint string
	query    url.Values
	body     interface{}
}

// do executes cfg through the circuit breaker and returns the raw body of a
// 2xx response.
func (c *Client) do(ctx context.Context, cfg requestConfig) ([]byte, error) {
	if c.breaker == nil {
		return c.roundTrip(ctx, cfg)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, cfg)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		return nil, fmt.Errorf("%w: %s %s", ErrCircuitOpen, cfg.method, cfg.endpoint)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, err
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		return body, nil
	}
}

// roundTrip sends one logical request. GETs are retried on 429, 502, 503 and
// 504 with exponential backoff. Mutations are sent once.
func (c *Client) roundTrip(ctx context.Context, cfg requestConfig) ([]byte, error) {
	var payload []byte
	if cfg.body != nil {
		var err error
		if payload, err = json.Marshal(cfg.body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	maxAttempts := 1
	if cfg.method == http.MethodGet && c.maxRetries > 0 {
		maxAttempts += c.maxRetries
	}

	for attempt := 0; ; attempt++ {
		req, token, err := c.newRequest(ctx, cfg, payload)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			metrics.RecordUpstreamRequest(cfg.method, cfg.endpoint, 0, time.Since(start))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%s %s: %w", cfg.method, cfg.endpoint, err)
		}

		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		resp.Body.Close()
		metrics.RecordUpstreamRequest(cfg.method, cfg.endpoint, resp.StatusCode, time.Since(start))
		if readErr != nil {
			return nil, fmt.Errorf("read %s response: %w", cfg.endpoint, readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}

		apiErr := newAPIError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized {
			metrics.UpstreamUnauthorized.Inc()
			logging.Ctx(ctx).Warn().Str("endpoint", cfg.endpoint).Msg("Remote API rejected session token")
			c.session.HandleUnauthorized(context.WithoutCancel(ctx), token)
			return nil, apiErr
		}

		if attempt+1 >= maxAttempts || !retryableStatus(resp.StatusCode) {
			return nil, apiErr
		}

		delay := retryDelay(c.retryBaseDelay, attempt, resp.Header.Get("Retry-After"))
		metrics.UpstreamRetries.WithLabelValues(cfg.endpoint).Inc()
		logging.Ctx(ctx).Warn().
			Str("endpoint", cfg.endpoint).
			Int("status", resp.StatusCode).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Int("max_attempts", maxAttempts).
			Msg("Remote API unavailable, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// newRequest builds one attempt and returns the bearer token it carries.
func (c *Client) newRequest(ctx context.Context, cfg requestConfig, payload []byte) (*http.Request, string, error) {
	reqURL := c.baseURL.String() + cfg.path
	if len(cfg.query) > 0 {
		reqURL += "?" + cfg.query.Encode()
	}

	var body io.Reader = http.NoBody
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, body)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.session.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	return req, token, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// retryDelay doubles base per attempt. A Retry-After header, in seconds or
// as an HTTP date, overrides the computed delay.
func retryDelay(base time.Duration, attempt int, retryAfter string) time.Duration {
	delay := base * (1 << attempt)
	if retryAfter == "" {
		return delay
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
		return 0
	}
	return delay
}

// decodeEnvelope parses the response wrapper. success=false is an error
// regardless of the HTTP status. An empty body counts as success.
func decodeEnvelope(raw []byte) (*models.Envelope, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &models.Envelope{Success: true}, nil
	}
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, &APIError{StatusCode: http.StatusOK, Message: msg, Body: truncate(raw)}
	}
	return &env, nil
}

// call executes cfg and returns the decoded envelope.
func (c *Client) call(ctx context.Context, cfg requestConfig) (*models.Envelope, error) {
	raw, err := c.do(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(raw)
}

// fetch executes cfg and decodes the envelope data into T.
func fetch[T any](ctx context.Context, c *Client, cfg requestConfig) (T, *models.Pagination, error) {
	var zero T
	env, err := c.call(ctx, cfg)
	if err != nil {
		return zero, nil, err
	}
	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return zero, env.Pagination, nil
	}
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return zero, nil, fmt.Errorf("decode %s data: %w", cfg.endpoint, err)
	}
	return out, env.Pagination, nil
}

func truncate(b []byte) []byte {
	if len(b) > maxErrorBody {
		return b[:maxErrorBody]
	}
	return b
}

// listQuery encodes the common list parameters, omitting zero values.
func listQuery(q models.ListQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	setIf(v, "search", q.Search)
	setIf(v, "status", q.Status)
	setIf(v, "sort", q.Sort)
	setIf(v, "order", q.Order)
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// escapeID escapes a resource id for use as one path segment.
func escapeID(id string) string {
	return url.PathEscape(id)
}
