// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package status

import "strings"

// Status is a fulfillment state of a physical letter request.
type Status string

// Canonical statuses.
const (
	// None means no request exists. It only appears on summaries and as
	// the target of an admin cancellation.
	None      Status = "none"
	Requested Status = "requested"
	Writing   Status = "writing"
	Sent      Status = "sent"
	Delivered Status = "delivered"
)

// Extended statuses reported by the recipient-address backend variant.
const (
	Confirmed  Status = "confirmed"
	Processing Status = "processing"
	Cancelled  Status = "cancelled"
	Failed     Status = "failed"
)

// legacyApproved is an old backend value folded into writing.
const legacyApproved = "approved"

var canonical = []Status{None, Requested, Writing, Sent, Delivered}

var extended = []Status{Requested, Confirmed, Processing, Writing, Sent, Delivered, Failed, Cancelled}

// transitions lists the next states offered to an operator.
var transitions = map[Status][]Status{
	Requested: {Writing, None},
	Writing:   {Sent},
	Sent:      {Delivered},
	Delivered: {},
}

var labels = map[Status]string{
	None:       "없음",
	Requested:  "신청됨",
	Writing:    "작성중",
	Sent:       "발송됨",
	Delivered:  "배송완료",
	Confirmed:  "승인됨",
	Processing: "처리 중",
	Cancelled:  "취소됨",
	Failed:     "실패",
}

// Canonical returns the canonical vocabulary in lifecycle order.
func Canonical() []Status {
	return append([]Status(nil), canonical...)
}

// Extended returns the extended vocabulary in lifecycle order.
func Extended() []Status {
	return append([]Status(nil), extended...)
}

// IsCanonical reports whether s belongs to the canonical vocabulary.
func (s Status) IsCanonical() bool {
	for _, c := range canonical {
		if s == c {
			return true
		}
	}
	return false
}

// IsExtended reports whether s belongs to the extended vocabulary.
func (s Status) IsExtended() bool {
	for _, e := range extended {
		if s == e {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is offered from s.
// Cancelled is terminal in the extended vocabulary.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Label returns the operator-facing label for s, or the raw value when no
// label is defined.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// normalize lowercases and trims a raw backend value.
func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Map converts a backend status into the canonical vocabulary.
//
// The function is total: unknown, empty and malformed values map to
// Requested. Canonical inputs are returned unchanged.
//
// Mapping table:
//
//	none                              -> none
//	requested                         -> requested
//	approved, confirmed, writing,
//	processing                        -> writing
//	sent                              -> sent
//	delivered                         -> delivered
//	anything else                     -> requested
func Map(raw string) Status {
	switch normalize(raw) {
	case string(None):
		return None
	case string(Requested):
		return Requested
	case legacyApproved, string(Confirmed), string(Writing), string(Processing):
		return Writing
	case string(Sent):
		return Sent
	case string(Delivered):
		return Delivered
	default:
		return Requested
	}
}

// MapExtended converts a backend status into the extended vocabulary.
// The legacy "approved" value becomes Confirmed. Unknown values map to
// Requested.
func MapExtended(raw string) Status {
	v := normalize(raw)
	if v == legacyApproved {
		return Confirmed
	}
	for _, e := range extended {
		if v == string(e) {
			return e
		}
	}
	return Requested
}

// NextStatuses returns the states an operator may choose from current.
// current is mapped with Map first, so legacy values resolve to
// their canonical row. The returned slice is owned by the caller.
//
// Example:
//
//	status.NextStatuses(status.Requested) // [writing none]
//	status.NextStatuses(status.Delivered) // []
func NextStatuses(current Status) []Status {
	next, ok := transitions[Map(string(current))]
	if !ok {
		return []Status{}
	}
	return append([]Status{}, next...)
}

// CanSuggest reports whether to appears in NextStatuses(from).
func CanSuggest(from, to Status) bool {
	for _, s := range NextStatuses(from) {
		if s == to {
			return true
		}
	}
	return false
}
