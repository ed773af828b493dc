// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tomtom215/letterdesk/internal/models"
)

// StatusPatch is the body of PATCH admin/physical-requests/{id}.
type StatusPatch struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// ShippingPatch is the body of PATCH admin/physical-requests/{id}/shipping.
type ShippingPatch struct {
	TrackingNumber    string `json:"trackingNumber"`
	ShippingCompany   string `json:"shippingCompany"`
	EstimatedDelivery string `json:"estimatedDelivery,omitempty"`
	AdminNotes        string `json:"adminNotes,omitempty"`
}

// BulkPatch is the body of POST admin/physical-requests/bulk. The backend
// accepts either letter ids or request ids.
type BulkPatch struct {
	LetterIDs  []string `json:"letterIds,omitempty"`
	RequestIDs []string `json:"requestIds,omitempty"`
	Status     string   `json:"status"`
	AdminNote  string   `json:"adminNote,omitempty"`
}

// ExportQuery holds the filters of GET admin/physical-requests/export.
type ExportQuery struct {
	Search   string
	Status   string
	DateFrom string
	DateTo   string
}

// ListPhysicalRequests returns one normalized page of physical requests.
func (c *Client) ListPhysicalRequests(ctx context.Context, q models.RequestQuery) (*models.RequestPage, error) {
	query := listQuery(q.ListQuery)
	setIf(query, "dateFrom", q.DateFrom)
	setIf(query, "dateTo", q.DateTo)
	setIf(query, "region", q.Region)

	env, err := c.call(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "admin/physical-requests",
		endpoint: "physical-requests",
		query:    query,
	})
	if err != nil {
		return nil, fmt.Errorf("list physical requests: %w", err)
	}

	reqs, err := models.Normalize(env.Data)
	if err != nil {
		return nil, fmt.Errorf("normalize physical requests: %w", err)
	}
	return &models.RequestPage{Requests: reqs, Pagination: env.Pagination}, nil
}

// GetPhysicalRequest fetches one request by request id or letter id. When
// the payload describes several requests (an address-array letter), the one
// whose request id equals id is returned, else the first.
func (c *Client) GetPhysicalRequest(ctx context.Context, id string) (*models.PhysicalRequest, error) {
	env, err := c.call(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "admin/physical-requests/" + escapeID(id),
		endpoint: "physical-requests/:id",
	})
	if err != nil {
		return nil, fmt.Errorf("get physical request %s: %w", id, err)
	}

	reqs, err := models.Normalize(env.Data)
	if err != nil {
		return nil, fmt.Errorf("normalize physical request %s: %w", id, err)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("get physical request %s: %w", id, ErrNotFound)
	}
	for i := range reqs {
		if reqs[i].RequestID == id {
			return &reqs[i], nil
		}
	}
	return &reqs[0], nil
}

// PhysicalRequestStats fetches the server-side statistics.
func (c *Client) PhysicalRequestStats(ctx context.Context) (*models.PhysicalLetterStats, error) {
	st, _, err := fetch[*models.PhysicalLetterStats](ctx, c, requestConfig{
		method:   http.MethodGet,
		path:     "admin/physical-requests/stats",
		endpoint: "physical-requests/stats",
	})
	if err != nil {
		return nil, fmt.Errorf("physical request stats: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("physical request stats: empty payload")
	}
	return st, nil
}

// UpdatePhysicalStatus sends the status mutation. It is never retried.
func (c *Client) UpdatePhysicalStatus(ctx context.Context, id string, patch StatusPatch) error {
	_, err := c.call(ctx, requestConfig{
		method:   http.MethodPatch,
		path:     "admin/physical-requests/" + escapeID(id),
		endpoint: "physical-requests/:id",
		body:     patch,
	})
	if err != nil {
		return fmt.Errorf("update status of %s: %w", id, err)
	}
	return nil
}

// UpdateShipping records carrier tracking data.
func (c *Client) UpdateShipping(ctx context.Context, id string, patch ShippingPatch) error {
	_, err := c.call(ctx, requestConfig{
		method:   http.MethodPatch,
		path:     "admin/physical-requests/" + escapeID(id) + "/shipping",
		endpoint: "physical-requests/:id/shipping",
		body:     patch,
	})
	if err != nil {
		return fmt.Errorf("update shipping of %s: %w", id, err)
	}
	return nil
}

// BulkUpdatePhysical applies one status to many requests in a single call.
func (c *Client) BulkUpdatePhysical(ctx context.Context, patch BulkPatch) (*models.BulkResult, error) {
	res, _, err := fetch[*models.BulkResult](ctx, c, requestConfig{
		method:   http.MethodPost,
		path:     "admin/physical-requests/bulk",
		endpoint: "physical-requests/bulk",
		body:     patch,
	})
	if err != nil {
		return nil, fmt.Errorf("bulk update: %w", err)
	}
	if res == nil {
		res = &models.BulkResult{}
	}
	return res, nil
}

// ExportPhysicalRequests returns every request matching q, normalized.
func (c *Client) ExportPhysicalRequests(ctx context.Context, q ExportQuery) ([]models.PhysicalRequest, error) {
	query := url.Values{}
	setIf(query, "search", q.Search)
	setIf(query, "status", q.Status)
	setIf(query, "dateFrom", q.DateFrom)
	setIf(query, "dateTo", q.DateTo)

	env, err := c.call(ctx, requestConfig{
		method:   http.MethodGet,
		path:     "admin/physical-requests/export",
		endpoint: "physical-requests/export",
		query:    query,
	})
	if err != nil {
		return nil, fmt.Errorf("export physical requests: %w", err)
	}
	reqs, err := models.Normalize(env.Data)
	if err != nil {
		return nil, fmt.Errorf("normalize export: %w", err)
	}
	return reqs, nil
}

// Statistics fetches GET admin/statistics for the given date bounds.
func (c *Client) Statistics(ctx context.Context, start, end string) (models.StatisticsData, error) {
	data, _, err := fetch[models.StatisticsData](ctx, c, requestConfig{
		method:   http.MethodGet,
		path:     "admin/statistics",
		endpoint: "statistics",
		query:    url.Values{"start": {start}, "end": {end}},
	})
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return data, nil
}

// PhysicalDashboard fetches the fulfillment dashboard for a range such as
// "7d".
func (c *Client) PhysicalDashboard(ctx context.Context, rangeName string) (*models.DashboardData, error) {
	if rangeName == "" {
		rangeName = "7d"
	}
	data, _, err := fetch[*models.DashboardData](ctx, c, requestConfig{
		method:   http.MethodGet,
		path:     "admin/physical-letters/dashboard",
		endpoint: "physical-letters/dashboard",
		query:    url.Values{"range": {rangeName}},
	})
	if err != nil {
		return nil, fmt.Errorf("physical dashboard: %w", err)
	}
	if data == nil {
		data = &models.DashboardData{}
	}
	return data, nil
}

// PhysicalAnalytics fetches the fulfillment analytics.
func (c *Client) PhysicalAnalytics(ctx context.Context) (*models.AnalyticsData, error) {
	data, _, err := fetch[*models.AnalyticsData](ctx, c, requestConfig{
		method:   http.MethodGet,
		path:     "admin/physical-letters/analytics",
		endpoint: "physical-letters/analytics",
	})
	if err != nil {
		return nil, fmt.Errorf("physical analytics: %w", err)
	}
	if data == nil {
		data = &models.AnalyticsData{}
	}
	return data, nil
}
