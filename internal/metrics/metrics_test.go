// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordUpstreamRequest(t *testing.T) {
	before := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("GET", "test-endpoint", "200"))
	RecordUpstreamRequest("GET", "test-endpoint", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("GET", "test-endpoint", "200"))
	if after-before != 1 {
		t.Errorf("expected counter +1, got %v", after-before)
	}

	// Transport failures have no status code.
	before = testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("PATCH", "test-endpoint", "error"))
	RecordUpstreamRequest("PATCH", "test-endpoint", 0, time.Millisecond)
	after = testutil.ToFloat64(UpstreamRequestsTotal.WithLabelValues("PATCH", "test-endpoint", "error"))
	if after-before != 1 {
		t.Errorf("expected error counter +1, got %v", after-before)
	}
}

func TestRecordStatusUpdate(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("boom"), "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := StatusUpdates.WithLabelValues("sent", tt.result)
			before := testutil.ToFloat64(c)
			RecordStatusUpdate("sent", tt.err)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("expected +1 for %s, got %v", tt.result, got)
			}
		})
	}
}

func TestRecordVerification(t *testing.T) {
	c := Verifications.WithLabelValues(VerifyMismatch)
	before := testutil.ToFloat64(c)

	RecordVerification(VerifyMismatch, 3)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("expected +1, got %v", got)
	}

	m := &dto.Metric{}
	if err := VerificationAttempts.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.GetHistogram().GetSampleCount() == 0 {
		t.Error("expected attempts histogram to have samples")
	}
}

func TestRecordBulk(t *testing.T) {
	ok := BulkItems.WithLabelValues("fanout", "success")
	bad := BulkItems.WithLabelValues("fanout", "failure")
	okBefore, badBefore := testutil.ToFloat64(ok), testutil.ToFloat64(bad)

	RecordBulk("fanout", 7, 3, 50*time.Millisecond)

	if got := testutil.ToFloat64(ok) - okBefore; got != 7 {
		t.Errorf("success delta = %v, want 7", got)
	}
	if got := testutil.ToFloat64(bad) - badBefore; got != 3 {
		t.Errorf("failure delta = %v, want 3", got)
	}
}
