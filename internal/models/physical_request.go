// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
physical_request.go - Canonical Physical Request Model

PhysicalRequest is created by an end user outside this system in state
requested, mutated only through admin-issued status changes and never hard
deleted. RequestID is unique; LetterID repeats across recipients of the
same letter.
*/

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tomtom215/letterdesk/internal/status"
)

// Recipient identifies who receives the printed letter.
type Recipient struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ShippingAddress is the delivery address of a request.
type ShippingAddress struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	ZipCode string `json:"zipCode"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
}

// ShippingInfo is carrier tracking data recorded once a request is sent.
type ShippingInfo struct {
	TrackingNumber    string     `json:"trackingNumber"`
	Carrier           string     `json:"carrier"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
}

// Cost is the price breakdown of one printed letter.
type Cost struct {
	Letter   decimal.Decimal `json:"letter"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// NewCost builds a Cost whose total is letter+shipping.
func NewCost(letter, shipping decimal.Decimal) *Cost {
	return &Cost{Letter: letter, Shipping: shipping, Total: letter.Add(shipping)}
}

// PhysicalRequest is one recipient's request to receive a printed copy of
// a letter.
type PhysicalRequest struct {
	RequestID  string `json:"requestId"`
	LetterID   string `json:"letterId"`
	Title      string `json:"title,omitempty"`
	AuthorName string `json:"authorName,omitempty"`

	// Status is the canonical status. RawStatus keeps the backend value so
	// extended-vocabulary statistics can still be computed.
	Status    status.Status `json:"status"`
	RawStatus string        `json:"rawStatus,omitempty"`

	// RequestedAt is zero when the backend omitted it or sent an
	// unparseable value.
	RequestedAt   time.Time `json:"requestedAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`

	Recipient       Recipient       `json:"recipient"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	AdminNote       string          `json:"adminNote,omitempty"`
	ShippingInfo    *ShippingInfo   `json:"shippingInfo,omitempty"`
	Cost            *Cost           `json:"cost,omitempty"`
}

// ID returns the identifier used to address the request on the remote API:
// the request ID when known, otherwise the letter ID.
func (r *PhysicalRequest) ID() string {
	if r.RequestID != "" {
		return r.RequestID
	}
	return r.LetterID
}

// UpdatedAt returns LastUpdatedAt, falling back to RequestedAt.
func (r *PhysicalRequest) UpdatedAt() time.Time {
	if !r.LastUpdatedAt.IsZero() {
		return r.LastUpdatedAt
	}
	return r.RequestedAt
}

// ExtendedStatus maps the raw backend value into the extended vocabulary.
func (r *PhysicalRequest) ExtendedStatus() status.Status {
	if r.RawStatus == "" {
		return status.MapExtended(string(r.Status))
	}
	return status.MapExtended(r.RawStatus)
}
