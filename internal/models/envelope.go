// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package models

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Pagination is the backend's page metadata.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Envelope is the backend's response wrapper. Data is kept raw so that
// physical request payloads can go through Normalize.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// RequestPage is a normalized page of physical requests.
type RequestPage struct {
	Requests   []PhysicalRequest `json:"requests"`
	Pagination *Pagination       `json:"pagination,omitempty"`
}

// PhysicalLetterStats is the pre-aggregated statistics payload of
// GET admin/physical-requests/stats.
type PhysicalLetterStats struct {
	Total                 int             `json:"total"`
	None                  int             `json:"none"`
	Requested             int             `json:"requested"`
	Writing               int             `json:"writing"`
	Sent                  int             `json:"sent"`
	Delivered             int             `json:"delivered"`
	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	AverageProcessingTime float64         `json:"averageProcessingTime"`
}

// BulkResult is the native bulk endpoint response.
type BulkResult struct {
	Updated int      `json:"updated"`
	Failed  []string `json:"failed"`
}

// PopularLetter is a dashboard entry ranking letters by request volume.
type PopularLetter struct {
	LetterID     string          `json:"letterId"`
	Title        string          `json:"title"`
	RequestCount int             `json:"requestCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// RecentRequest is a dashboard entry for a recently created request.
type RecentRequest struct {
	ID            string          `json:"id"`
	LetterID      string          `json:"letterId"`
	LetterTitle   string          `json:"letterTitle"`
	RecipientName string          `json:"recipientName"`
	Status        string          `json:"status"`
	Cost          decimal.Decimal `json:"cost"`
	CreatedAt     string          `json:"createdAt"`
}

// DashboardData is the payload of GET admin/physical-letters/dashboard.
type DashboardData struct {
	TotalRequests     int             `json:"totalRequests"`
	PendingRequests   int             `json:"pendingRequests"`
	CompletedRequests int             `json:"completedRequests"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	PopularLetters    []PopularLetter `json:"popularLetters"`
	RecentRequests    []RecentRequest `json:"recentRequests"`
}

// DailyStat is one day of request volume.
type DailyStat struct {
	Date     string          `json:"date"`
	Requests int             `json:"requests"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ShareStat is a count with its share of the total.
type ShareStat struct {
	Key        string  `json:"key"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// UnmarshalJSON accepts the backend's region/status keyed variants.
func (s *ShareStat) UnmarshalJSON(data []byte) error {
	var raw struct {
		Region     string  `json:"region"`
		Status     string  `json:"status"`
		Key        string  `json:"key"`
		Count      int     `json:"count"`
		Percentage float64 `json:"percentage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Key = firstNonEmpty(raw.Key, raw.Region, raw.Status)
	s.Count = raw.Count
	s.Percentage = raw.Percentage
	return nil
}

// TopLetter is an analytics entry ranking letters by conversion.
type TopLetter struct {
	LetterID       string  `json:"letterId"`
	Title          string  `json:"title"`
	RequestCount   int     `json:"requestCount"`
	ConversionRate float64 `json:"conversionRate"`
}

// AnalyticsData is the payload of GET admin/physical-letters/analytics.
type AnalyticsData struct {
	DailyStats            []DailyStat `json:"dailyStats"`
	RegionStats           []ShareStat `json:"regionStats"`
	StatusDistribution    []ShareStat `json:"statusDistribution"`
	AverageProcessingTime float64     `json:"averageProcessingTime"`
	TopPerformingLetters  []TopLetter `json:"topPerformingLetters"`
}

// StatisticsData is the payload of GET admin/statistics. The backend
// returns a loosely structured document, so it is passed through as is.
type StatisticsData map[string]json.RawMessage
