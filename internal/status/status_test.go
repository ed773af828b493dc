// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package status

import (
	"testing"
)

// ========================================
// Map
// ========================================

func TestMap_Table(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"requested", Requested},
		{"approved", Writing},
		{"writing", Writing},
		{"processing", Writing},
		{"confirmed", Writing},
		{"sent", Sent},
		{"delivered", Delivered},
		{"none", None},
		{"  Delivered ", Delivered},
		{"SENT", Sent},
		{"cancelled", Requested},
		{"failed", Requested},
		{"", Requested},
		{"   ", Requested},
		{"null", Requested},
		{"undefined", Requested},
		{"배송완료", Requested},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Map(tt.input); got != tt.want {
				t.Errorf("Map(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMap_Totality(t *testing.T) {
	inputs := []string{"", "\x00", "requested\n", "🚚", "writing;drop", "Approved", "PROCESSING"}
	for i := 0; i < 256; i++ {
		inputs = append(inputs, string(rune(i)))
	}

	for _, in := range inputs {
		got := Map(in)
		if !got.IsCanonical() {
			t.Errorf("Map(%q) = %q, not in canonical set", in, got)
		}
	}
}

func TestMap_Idempotent(t *testing.T) {
	for _, s := range Canonical() {
		if got := Map(string(s)); got != s {
			t.Errorf("Map(%q) = %q, want unchanged", s, got)
		}
		if got := Map(string(Map(string(s)))); got != s {
			t.Errorf("Map(Map(%q)) = %q, want unchanged", s, got)
		}
	}
}

func TestMapExtended(t *testing.T) {
	for _, s := range Extended() {
		if got := MapExtended(string(s)); got != s {
			t.Errorf("MapExtended(%q) = %q, want unchanged", s, got)
		}
	}
	if got := MapExtended("approved"); got != Confirmed {
		t.Errorf("MapExtended(approved) = %q, want confirmed", got)
	}
	if got := MapExtended("lost-in-transit"); got != Requested {
		t.Errorf("MapExtended(unknown) = %q, want requested", got)
	}
}

// ========================================
// Transitions
// ========================================

func TestNextStatuses(t *testing.T) {
	tests := []struct {
		current Status
		want    []Status
	}{
		{Requested, []Status{Writing, None}},
		{Writing, []Status{Sent}},
		{Sent, []Status{Delivered}},
		{Delivered, []Status{}},
		{None, []Status{}},
		{Status("approved"), []Status{Sent}},
		{Status("garbage"), []Status{Writing, None}},
	}

	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			got := NextStatuses(tt.current)
			if len(got) != len(tt.want) {
				t.Fatalf("NextStatuses(%q) = %v, want %v", tt.current, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("NextStatuses(%q)[%d] = %q, want %q", tt.current, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNextStatuses_ReturnsCopy(t *testing.T) {
	first := NextStatuses(Requested)
	first[0] = Delivered

	if again := NextStatuses(Requested); again[0] != Writing {
		t.Errorf("table mutated through returned slice: %v", again)
	}
}

func TestCanSuggest(t *testing.T) {
	if !CanSuggest(Requested, Writing) {
		t.Error("requested -> writing should be suggested")
	}
	if CanSuggest(Delivered, Requested) {
		t.Error("delivered is terminal")
	}
	if CanSuggest(Writing, Delivered) {
		t.Error("writing -> delivered skips sent")
	}
}

func TestStatusPredicates(t *testing.T) {
	if !Delivered.IsTerminal() || !Cancelled.IsTerminal() {
		t.Error("delivered and cancelled must be terminal")
	}
	if Sent.IsTerminal() {
		t.Error("sent is not terminal")
	}
	if Cancelled.IsCanonical() {
		t.Error("cancelled is extended-only")
	}
	if !Cancelled.IsExtended() || None.IsExtended() {
		t.Error("extended membership wrong")
	}
	if Writing.Label() != "작성중" {
		t.Errorf("Writing.Label() = %q", Writing.Label())
	}
	if Status("x").Label() != "x" {
		t.Error("unknown label should echo raw value")
	}
}
