// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ServiceName is stamped on every line unless Config.Service overrides it.
const ServiceName = "letterdesk"

// DefaultRedactedFields are the credential fields the console relays between
// operators and the backend. Their values never reach the log output.
var DefaultRedactedFields = []string{
	"password", "current_password", "new_password",
	"token", "authorization", "cookie",
}

// Config selects how the console writes its logs.
type Config struct {
	// Level is trace, debug, info, warn, error, fatal or disabled. Empty
	// or unknown means info.
	Level string

	// Format is "json" (default) or "console" for local development.
	Format string

	// Caller adds file:line to every line.
	Caller bool

	// NoTimestamp drops the time field, for golden-output tests.
	NoTimestamp bool

	// Service and Instance identify the process in aggregated logs.
	// Instance is omitted when empty.
	Service  string
	Instance string

	// Redact lists top-level fields whose values are replaced before
	// output. Nil means DefaultRedactedFields; an empty slice disables it.
	Redact []string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig is what the process uses before main calls Init.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // config loading logs before Init runs
func init() {
	Init(DefaultConfig())
}

// Init builds the process logger from cfg and installs it. Calling it again
// swaps the logger for every later event; child loggers already taken with
// With or WithComponent keep the old one.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	l := build(cfg)
	current.Store(&l)
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	redact := cfg.Redact
	if redact == nil {
		redact = DefaultRedactedFields
	}
	if len(redact) > 0 {
		out = newRedactWriter(out, redact)
	}

	service := cfg.Service
	if service == "" {
		service = ServiceName
	}
	lc := zerolog.New(out).With().Str("service", service)
	if cfg.Instance != "" {
		lc = lc.Str("instance", cfg.Instance)
	}
	if !cfg.NoTimestamp {
		lc = lc.Timestamp()
	}
	if cfg.Caller {
		lc = lc.Caller()
	}
	return lc.Logger()
}

var levels = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"disabled": zerolog.Disabled,
}

// ParseLevel maps a level name to zerolog. Unknown names mean info.
func ParseLevel(level string) zerolog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// Logger returns a copy of the process logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// SetLogger installs l as the process logger. Tests use it to capture output.
//
//nolint:gocritic // zerolog.Logger is passed by value throughout zerolog
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

// With starts a child logger context.
func With() zerolog.Context { return current.Load().With() }

func Debug() *zerolog.Event { return current.Load().Debug() }
func Info() *zerolog.Event  { return current.Load().Info() }
func Warn() *zerolog.Event  { return current.Load().Warn() }
func Error() *zerolog.Event { return current.Load().Error() }

// Fatal exits the process after the event is written.
func Fatal() *zerolog.Event { return current.Load().Fatal() }

// Err starts an error event with err attached, or an info event when err is nil.
func Err(err error) *zerolog.Event { return current.Load().Err(err) }

// NewTestLogger writes JSON to w with the fields Init would stamp, minus the
// instance.
//
//	var buf bytes.Buffer
//	logging.SetLogger(logging.NewTestLogger(&buf))
func NewTestLogger(w io.Writer) zerolog.Logger {
	return build(Config{Output: w})
}

const redactedValue = `"[redacted]"`

// redactWriter rewrites JSON lines that carry a credential field. Lines
// without one pass through untouched, so field order is only lost on the
// rare line that needed rewriting.
type redactWriter struct {
	out    io.Writer
	fields []string
	quoted [][]byte
}

func newRedactWriter(out io.Writer, fields []string) *redactWriter {
	w := &redactWriter{out: out, fields: fields}
	for _, f := range fields {
		w.quoted = append(w.quoted, []byte(`"`+f+`":`))
	}
	return w
}

func (w *redactWriter) Write(p []byte) (int, error) {
	if !w.mentions(p) {
		return w.out.Write(p)
	}
	var line map[string]json.RawMessage
	if err := json.Unmarshal(p, &line); err != nil {
		return w.out.Write(p)
	}
	hit := false
	for _, f := range w.fields {
		if _, ok := line[f]; ok {
			line[f] = json.RawMessage(redactedValue)
			hit = true
		}
	}
	if !hit {
		return w.out.Write(p)
	}
	b, err := json.Marshal(line)
	if err != nil {
		return 0, err
	}
	if _, err := w.out.Write(append(b, '\n')); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *redactWriter) mentions(p []byte) bool {
	for _, q := range w.quoted {
		if bytes.Contains(p, q) {
			return true
		}
	}
	return false
}
