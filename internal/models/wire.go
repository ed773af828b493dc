// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
wire.go - Backend Schema Normalization

This file is the only place that knows the backend wire shapes for physical
requests. Each raw object is classified once and converted into canonical
PhysicalRequest values.

Shape detection (first match wins):
  - recipientAddresses present            -> address-array letter
  - physicalStatus, recipientName or
    physicalRequestDate present           -> flat letter
  - otherwise                             -> bare request record
*/

package models

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/tomtom215/letterdesk/internal/status"
)

// ErrUnsupportedShape is returned when the payload is neither an object nor
// an array of objects.
var ErrUnsupportedShape = errors.New("unsupported physical request payload")

// Shape identifies which backend schema a record arrived in.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeFlatLetter
	ShapeAddressArray
	ShapeBareRequest
)

func (s Shape) String() string {
	switch s {
	case ShapeFlatLetter:
		return "flat_letter"
	case ShapeAddressArray:
		return "address_array"
	case ShapeBareRequest:
		return "bare_request"
	default:
		return "unknown"
	}
}

type wireAddress struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	ZipCode     string `json:"zipCode"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	RequestedAt string `json:"requestedAt"`
}

type wireShippingInfo struct {
	TrackingNumber    string `json:"trackingNumber"`
	ShippingCompany   string `json:"shippingCompany"`
	EstimatedDelivery string `json:"estimatedDelivery"`
	DeliveredAt       string `json:"deliveredAt"`
}

type wireCost struct {
	LetterCost   *decimal.Decimal `json:"letterCost"`
	ShippingCost *decimal.Decimal `json:"shippingCost"`
	TotalCost    *decimal.Decimal `json:"totalCost"`
}

// flatLetterRecord is one recipient row keyed by the letter's _id.
type flatLetterRecord struct {
	ID                  string            `json:"_id"`
	Title               string            `json:"title"`
	AuthorName          string            `json:"authorName"`
	PhysicalRequested   *bool             `json:"physicalRequested"`
	PhysicalStatus      string            `json:"physicalStatus"`
	PhysicalRequestDate string            `json:"physicalRequestDate"`
	UpdatedAt           string            `json:"updatedAt"`
	RecipientName       string            `json:"recipientName"`
	RecipientPhone      string            `json:"recipientPhone"`
	ShippingAddress     wireAddress       `json:"shippingAddress"`
	PhysicalNotes       string            `json:"physicalNotes"`
	RequestID           string            `json:"requestId"`
	ShippingInfo        *wireShippingInfo `json:"shippingInfo"`
	Cost                *wireCost         `json:"cost"`
}

type wireRecipientAddress struct {
	ID           string            `json:"_id"`
	Name         string            `json:"name"`
	Phone        string            `json:"phone"`
	ZipCode      string            `json:"zipCode"`
	Address1     string            `json:"address1"`
	Address2     string            `json:"address2"`
	Status       string            `json:"status"`
	RequestedAt  string            `json:"requestedAt"`
	UpdatedAt    string            `json:"updatedAt"`
	AdminNote    string            `json:"adminNote"`
	ShippingInfo *wireShippingInfo `json:"shippingInfo"`
	Cost         *wireCost         `json:"cost"`
}

// addressArrayLetter is one letter carrying all of its recipients.
type addressArrayLetter struct {
	ID                 string                 `json:"_id"`
	Title              string                 `json:"title"`
	AuthorName         string                 `json:"authorName"`
	PhysicalRequested  *bool                  `json:"physicalRequested"`
	UpdatedAt          string                 `json:"updatedAt"`
	RecipientAddresses []wireRecipientAddress `json:"recipientAddresses"`
}

// bareRequestRecord is a single request as returned by detail and update
// endpoints.
type bareRequestRecord struct {
	ID              string            `json:"_id"`
	RequestID       string            `json:"requestId"`
	LetterID        string            `json:"letterId"`
	Title           string            `json:"title"`
	AuthorName      string            `json:"authorName"`
	Status          string            `json:"status"`
	RequestedAt     string            `json:"requestedAt"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
	RecipientName   string            `json:"recipientName"`
	RecipientPhone  string            `json:"recipientPhone"`
	ShippingAddress wireAddress       `json:"shippingAddress"`
	AdminNote       string            `json:"adminNote"`
	Notes           string            `json:"notes"`
	ShippingInfo    *wireShippingInfo `json:"shippingInfo"`
	Cost            *wireCost         `json:"cost"`
}

// shapeProbe captures only the keys used for classification.
type shapeProbe struct {
	RecipientAddresses  json.RawMessage `json:"recipientAddresses"`
	PhysicalStatus      *string         `json:"physicalStatus"`
	RecipientName       *string         `json:"recipientName"`
	PhysicalRequestDate *string         `json:"physicalRequestDate"`
}

// DetectShape classifies a single JSON object.
func DetectShape(raw []byte) (Shape, error) {
	var check shapeProbe
	if err := json.Unmarshal(raw, &check); err != nil {
		return ShapeUnknown, fmt.Errorf("%w: %v", ErrUnsupportedShape, err)
	}
	switch {
	case len(check.RecipientAddresses) > 0 && !bytes.Equal(check.RecipientAddresses, []byte("null")):
		return ShapeAddressArray, nil
	case check.PhysicalStatus != nil, check.RecipientName != nil, check.PhysicalRequestDate != nil:
		return ShapeFlatLetter, nil
	default:
		return ShapeBareRequest, nil
	}
}

// Normalize converts a backend payload into canonical requests. raw may be
// a single object or an array; array elements may use different shapes.
// null and empty payloads yield an empty slice.
func Normalize(raw []byte) ([]PhysicalRequest, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []PhysicalRequest{}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode request array: %w", err)
		}
		out := make([]PhysicalRequest, 0, len(items))
		for i, item := range items {
			reqs, err := normalizeObject(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, reqs...)
		}
		return out, nil
	case '{':
		return normalizeObject(trimmed)
	default:
		return nil, ErrUnsupportedShape
	}
}

// NormalizeOne decodes a payload expected to describe exactly one request
// and returns the first request it contains.
func NormalizeOne(raw []byte) (*PhysicalRequest, error) {
	reqs, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no request in payload", ErrUnsupportedShape)
	}
	return &reqs[0], nil
}

func normalizeObject(raw []byte) ([]PhysicalRequest, error) {
	shape, err := DetectShape(raw)
	if err != nil {
		return nil, err
	}

	switch shape {
	case ShapeAddressArray:
		var rec addressArrayLetter
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", shape, err)
		}
		return rec.toRequests(), nil
	case ShapeFlatLetter:
		var rec flatLetterRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", shape, err)
		}
		if rec.PhysicalRequested != nil && !*rec.PhysicalRequested {
			return nil, nil
		}
		return []PhysicalRequest{rec.toRequest()}, nil
	default:
		var rec bareRequestRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", shape, err)
		}
		return []PhysicalRequest{rec.toRequest()}, nil
	}
}

func (r *flatLetterRecord) toRequest() PhysicalRequest {
	requestedAt := ParseTimestamp(r.PhysicalRequestDate)
	if requestedAt.IsZero() {
		requestedAt = ParseTimestamp(r.ShippingAddress.RequestedAt)
	}
	name := firstNonEmpty(r.RecipientName, r.ShippingAddress.Name)
	phone := firstNonEmpty(r.RecipientPhone, r.ShippingAddress.Phone)

	return PhysicalRequest{
		RequestID:     r.RequestID,
		LetterID:      r.ID,
		Title:         r.Title,
		AuthorName:    r.AuthorName,
		Status:        status.Map(r.PhysicalStatus),
		RawStatus:     r.PhysicalStatus,
		RequestedAt:   requestedAt,
		LastUpdatedAt: ParseTimestamp(r.UpdatedAt),
		Recipient:     Recipient{Name: name, Phone: phone},
		ShippingAddress: ShippingAddress{
			Name:    r.ShippingAddress.Name,
			Phone:   r.ShippingAddress.Phone,
			ZipCode: r.ShippingAddress.ZipCode,
			Line1:   r.ShippingAddress.Address1,
			Line2:   r.ShippingAddress.Address2,
		},
		AdminNote:    r.PhysicalNotes,
		ShippingInfo: r.ShippingInfo.toModel(),
		Cost:         r.Cost.toModel(),
	}
}

func (l *addressArrayLetter) toRequests() []PhysicalRequest {
	if l.PhysicalRequested != nil && !*l.PhysicalRequested {
		return nil
	}
	letterUpdated := ParseTimestamp(l.UpdatedAt)
	out := make([]PhysicalRequest, 0, len(l.RecipientAddresses))
	for _, a := range l.RecipientAddresses {
		updated := ParseTimestamp(a.UpdatedAt)
		if updated.IsZero() {
			updated = letterUpdated
		}
		out = append(out, PhysicalRequest{
			RequestID:     a.ID,
			LetterID:      l.ID,
			Title:         l.Title,
			AuthorName:    l.AuthorName,
			Status:        status.Map(a.Status),
			RawStatus:     a.Status,
			RequestedAt:   ParseTimestamp(a.RequestedAt),
			LastUpdatedAt: updated,
			Recipient:     Recipient{Name: a.Name, Phone: a.Phone},
			ShippingAddress: ShippingAddress{
				Name:    a.Name,
				Phone:   a.Phone,
				ZipCode: a.ZipCode,
				Line1:   a.Address1,
				Line2:   a.Address2,
			},
			AdminNote:    a.AdminNote,
			ShippingInfo: a.ShippingInfo.toModel(),
			Cost:         a.Cost.toModel(),
		})
	}
	return out
}

func (r *bareRequestRecord) toRequest() PhysicalRequest {
	requestID := firstNonEmpty(r.RequestID, r.ID)
	requestedAt := ParseTimestamp(r.RequestedAt)
	if requestedAt.IsZero() {
		requestedAt = ParseTimestamp(r.ShippingAddress.RequestedAt)
	}
	if requestedAt.IsZero() {
		requestedAt = ParseTimestamp(r.CreatedAt)
	}

	return PhysicalRequest{
		RequestID:     requestID,
		LetterID:      r.LetterID,
		Title:         r.Title,
		AuthorName:    r.AuthorName,
		Status:        status.Map(r.Status),
		RawStatus:     r.Status,
		RequestedAt:   requestedAt,
		LastUpdatedAt: ParseTimestamp(r.UpdatedAt),
		Recipient: Recipient{
			Name:  firstNonEmpty(r.RecipientName, r.ShippingAddress.Name),
			Phone: firstNonEmpty(r.RecipientPhone, r.ShippingAddress.Phone),
		},
		ShippingAddress: ShippingAddress{
			Name:    r.ShippingAddress.Name,
			Phone:   r.ShippingAddress.Phone,
			ZipCode: r.ShippingAddress.ZipCode,
			Line1:   r.ShippingAddress.Address1,
			Line2:   r.ShippingAddress.Address2,
		},
		AdminNote:    firstNonEmpty(r.AdminNote, r.Notes),
		ShippingInfo: r.ShippingInfo.toModel(),
		Cost:         r.Cost.toModel(),
	}
}

func (w *wireShippingInfo) toModel() *ShippingInfo {
	if w == nil || (w.TrackingNumber == "" && w.ShippingCompany == "") {
		return nil
	}
	info := &ShippingInfo{
		TrackingNumber: w.TrackingNumber,
		Carrier:        w.ShippingCompany,
	}
	if t := ParseTimestamp(w.EstimatedDelivery); !t.IsZero() {
		info.EstimatedDelivery = &t
	}
	if t := ParseTimestamp(w.DeliveredAt); !t.IsZero() {
		info.DeliveredAt = &t
	}
	return info
}

func (w *wireCost) toModel() *Cost {
	if w == nil {
		return nil
	}
	var letter, shipping decimal.Decimal
	if w.LetterCost != nil {
		letter = *w.LetterCost
	}
	if w.ShippingCost != nil {
		shipping = *w.ShippingCost
	}
	cost := NewCost(letter, shipping)
	if w.TotalCost != nil {
		cost.Total = *w.TotalCost
	}
	return cost
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a backend timestamp. It returns the zero time for
// empty or unparseable input.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
