// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package stats

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/status"
)

// ErrInvalidRange is returned by ParseRange for unknown range names.
var ErrInvalidRange = errors.New("invalid date range")

// Range is a dashboard time window.
type Range string

const (
	Range7d  Range = "7d"
	Range30d Range = "30d"
	Range90d Range = "90d"
	RangeAll Range = "all"
)

// Ranges lists the supported ranges.
func Ranges() []Range {
	return []Range{Range7d, Range30d, Range90d, RangeAll}
}

// ParseRange validates a range name. An empty string selects RangeAll.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case "":
		return RangeAll, nil
	case Range7d, Range30d, Range90d, RangeAll:
		return Range(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
}

// Duration returns the window length, or 0 for RangeAll.
func (r Range) Duration() time.Duration {
	switch r {
	case Range7d:
		return 7 * 24 * time.Hour
	case Range30d:
		return 30 * 24 * time.Hour
	case Range90d:
		return 90 * 24 * time.Hour
	default:
		return 0
	}
}

// Stats holds counts per status for a request collection.
type Stats struct {
	Total int `json:"total"`

	// Canonical buckets.
	None      int `json:"none"`
	Requested int `json:"requested"`
	Writing   int `json:"writing"`
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`

	// Extended buckets, counted from the raw backend value.
	Confirmed  int `json:"confirmed"`
	Processing int `json:"processing"`
	Cancelled  int `json:"cancelled"`
	Failed     int `json:"failed"`

	// CompletionRate is round(100 * delivered / total), 0 for no requests.
	CompletionRate int `json:"completionRate"`

	TotalRevenue          decimal.Decimal `json:"totalRevenue"`
	AverageProcessingTime float64         `json:"averageProcessingTime,omitempty"`
}

// CompletionRate returns round(100*delivered/total), or 0 when total is 0.
func CompletionRate(delivered, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(delivered) / float64(total)))
}

// Compute counts requests per status. Canonical buckets use status.Map, so
// unknown values count as requested. Extended buckets use
// status.MapExtended over the raw backend value.
func Compute(requests []models.PhysicalRequest) Stats {
	s := Stats{Total: len(requests), TotalRevenue: decimal.Zero}

	for i := range requests {
		r := &requests[i]
		switch status.Map(string(r.Status)) {
		case status.None:
			s.None++
		case status.Requested:
			s.Requested++
		case status.Writing:
			s.Writing++
		case status.Sent:
			s.Sent++
		case status.Delivered:
			s.Delivered++
		}

		switch r.ExtendedStatus() {
		case status.Confirmed:
			s.Confirmed++
		case status.Processing:
			s.Processing++
		case status.Cancelled:
			s.Cancelled++
		case status.Failed:
			s.Failed++
		}

		if r.Cost != nil {
			s.TotalRevenue = s.TotalRevenue.Add(r.Cost.Total)
		}
	}

	s.CompletionRate = CompletionRate(s.Delivered, s.Total)
	return s
}

// FromServer converts the backend's pre-aggregated payload.
func FromServer(p *models.PhysicalLetterStats) Stats {
	return Stats{
		Total:                 p.Total,
		None:                  p.None,
		Requested:             p.Requested,
		Writing:               p.Writing,
		Sent:                  p.Sent,
		Delivered:             p.Delivered,
		CompletionRate:        CompletionRate(p.Delivered, p.Total),
		TotalRevenue:          p.TotalRevenue,
		AverageProcessingTime: p.AverageProcessingTime,
	}
}

// FilterByDateRange keeps requests with RequestedAt >= now - r. RangeAll
// returns requests unchanged. Requests with a zero RequestedAt are excluded
// from every bounded range.
func FilterByDateRange(requests []models.PhysicalRequest, r Range, now time.Time) []models.PhysicalRequest {
	window := r.Duration()
	if window == 0 {
		return requests
	}

	cutoff := now.Add(-window)
	out := make([]models.PhysicalRequest, 0, len(requests))
	for i := range requests {
		t := requests[i].RequestedAt
		if t.IsZero() || t.Before(cutoff) {
			continue
		}
		out = append(out, requests[i])
	}
	return out
}
