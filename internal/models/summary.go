// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package models

import (
	"time"

	"github.com/tomtom215/letterdesk/internal/status"
)

// LetterPhysicalSummary is the letter-level view of all physical requests
// sharing one LetterID. It is a read-only projection: it is recomputed from
// the request set and never patched or persisted.
type LetterPhysicalSummary struct {
	LetterID   string `json:"letterId"`
	Title      string `json:"title"`
	AuthorName string `json:"authorName"`

	// TotalRequests equals len(Recipients) at aggregation time.
	TotalRequests int `json:"totalRequests"`

	// CurrentStatus is the status of the most recently updated request.
	CurrentStatus status.Status `json:"currentStatus"`
	LastUpdatedAt time.Time     `json:"lastUpdatedAt"`
	AdminNote     string        `json:"adminNote,omitempty"`

	// RequestID addresses the most recently updated request.
	RequestID string `json:"requestId,omitempty"`

	Recipients []PhysicalRequest `json:"recipients"`
}
