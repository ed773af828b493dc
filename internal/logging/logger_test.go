// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInit_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Str("letter_id", "L1").Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
	if entry["letter_id"] != "L1" {
		t.Errorf("letter_id = %v, want L1", entry["letter_id"])
	}
}

func TestCtx_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := ContextWithCorrelationID(context.Background(), "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")
	Ctx(ctx).Info().Msg("with context")

	out := buf.String()
	if !strings.Contains(out, `"correlation_id":"abc12345"`) {
		t.Errorf("missing correlation_id in %q", out)
	}
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("missing request_id in %q", out)
	}
}

func TestGenerateCorrelationID(t *testing.T) {
	a := GenerateCorrelationID()
	b := GenerateCorrelationID()
	if len(a) != 8 {
		t.Errorf("len = %d, want 8", len(a))
	}
	if a == b {
		t.Error("expected distinct correlation IDs")
	}
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context returned %q", got)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	l := WithComponent("fulfillment")
	l.Warn().Msg("mismatch")

	if !strings.Contains(buf.String(), `"component":"fulfillment"`) {
		t.Errorf("missing component field in %q", buf.String())
	}
}

func TestSlogHandler_WritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	logger := NewSlogLogger().WithGroup("supervisor")
	logger.Warn("service restarted", "service", "refresher", "attempt", 2)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"supervisor.service":"refresher"`, `"supervisor.attempt":2`, "service restarted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestAdapters_WriteThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	NewCronAdapter("refresher").Error(errors.New("boom"), "job panicked", "entry", 3)
	NewWatermillAdapter("events").With(watermill.LogFields{"topic": "t"}).Info("subscribed", nil)

	out := buf.String()
	for _, want := range []string{`"component":"refresher"`, `"error":"boom"`, `"entry":3`, `"topic":"t"`, "subscribed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestInit_StampsServiceAndInstance(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		wantService  string
		wantInstance interface{}
	}{
		{"defaults", Config{}, ServiceName, nil},
		{"instance", Config{Instance: "console-1"}, ServiceName, "console-1"},
		{"override", Config{Service: "letterdesk-worker", Instance: "w2"}, "letterdesk-worker", "w2"},
	}
	t.Cleanup(func() { Init(DefaultConfig()) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Output = &buf
			tt.cfg.NoTimestamp = true
			Init(tt.cfg)
			Info().Msg("ready")

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
			}
			if entry["service"] != tt.wantService {
				t.Errorf("service = %v, want %v", entry["service"], tt.wantService)
			}
			if entry["instance"] != tt.wantInstance {
				t.Errorf("instance = %v, want %v", entry["instance"], tt.wantInstance)
			}
			if _, ok := entry["time"]; ok {
				t.Errorf("time present with NoTimestamp: %q", buf.String())
			}
		})
	}
}

func TestInit_RedactsCredentials(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		log      func()
		secret   string
		keepText string
	}{
		{
			name:     "login password",
			cfg:      Config{},
			log:      func() { Info().Str("email", "ops@example.com").Str("password", "hunter2").Msg("Login attempt") },
			secret:   "hunter2",
			keepText: "ops@example.com",
		},
		{
			name:     "bearer token",
			cfg:      Config{},
			log:      func() { Warn().Str("token", "eyJhbGciOi").Msg("Session rejected") },
			secret:   "eyJhbGciOi",
			keepText: "Session rejected",
		},
		{
			name:     "console format",
			cfg:      Config{Format: "console"},
			log:      func() { Info().Str("new_password", "s3cret!").Msg("Password change") },
			secret:   "s3cret!",
			keepText: "Password change",
		},
		{
			name:     "value mentions field name only",
			cfg:      Config{},
			log:      func() { Info().Str("note", `reset "password": later`).Msg("Note") },
			secret:   "",
			keepText: `reset \"password\": later`,
		},
	}
	t.Cleanup(func() { Init(DefaultConfig()) })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Output = &buf
			Init(tt.cfg)
			tt.log()

			out := buf.String()
			if tt.secret != "" && strings.Contains(out, tt.secret) {
				t.Errorf("secret %q leaked: %q", tt.secret, out)
			}
			if tt.secret != "" && !strings.Contains(out, "[redacted]") {
				t.Errorf("missing redaction marker: %q", out)
			}
			if !strings.Contains(out, tt.keepText) {
				t.Errorf("lost %q: %q", tt.keepText, out)
			}
		})
	}
}

func TestInit_EmptyRedactListDisablesRedaction(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Output: &buf, Redact: []string{}})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Debug().Str("token", "visible").Msg("hidden by level")
	Info().Str("token", "visible").Msg("shown")

	if got := strings.Count(buf.String(), `"token":"visible"`); got != 1 {
		t.Errorf("token lines = %d, want 1 (info only): %q", got, buf.String())
	}
}
