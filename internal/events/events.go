// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current event payload version.
const SchemaVersion = 1

// Topics.
const (
	TopicStatusChanged    = "fulfillment.status_changed"
	TopicCacheInvalidated = "cache.invalidated"
)

// Mode values of StatusChanged.
const (
	ModeSingle     = "single"
	ModeBulkNative = "bulk_native"
	ModeBulkFanout = "bulk_fanout"
)

// StatusChanged is published after the remote API accepted a status
// mutation. Verified is nil until verification has a result.
type StatusChanged struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`

	ID     string `json:"id"`
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
	Mode   string `json:"mode"`
	Actor  string `json:"actor,omitempty"`
}

// CacheInvalidated is published after the cache dispatcher dropped keys.
type CacheInvalidated struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`

	Mutation string   `json:"mutation"`
	Keys     []string `json:"keys"`
	Removed  int      `json:"removed"`
}

// Envelope is a decoded event of either type as kept by the Recorder.
type Envelope struct {
	Topic            string            `json:"topic"`
	StatusChanged    *StatusChanged    `json:"status_changed,omitempty"`
	CacheInvalidated *CacheInvalidated `json:"cache_invalidated,omitempty"`
}

func stamp(eventID *string, ts *time.Time, version *int) {
	if *eventID == "" {
		*eventID = uuid.NewString()
	}
	if ts.IsZero() {
		*ts = time.Now().UTC()
	}
	*version = SchemaVersion
}

// Validate checks required fields.
func (e *StatusChanged) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("status event: id is required")
	}
	if e.Status == "" {
		return fmt.Errorf("status event: status is required")
	}
	return nil
}

// Validate checks required fields.
func (e *CacheInvalidated) Validate() error {
	if e.Mutation == "" {
		return fmt.Errorf("invalidation event: mutation is required")
	}
	return nil
}

func decode(topic string, payload []byte) (*Envelope, error) {
	env := &Envelope{Topic: topic}
	var err error
	switch topic {
	case TopicStatusChanged:
		env.StatusChanged = &StatusChanged{}
		err = json.Unmarshal(payload, env.StatusChanged)
	case TopicCacheInvalidated:
		env.CacheInvalidated = &CacheInvalidated{}
		err = json.Unmarshal(payload, env.CacheInvalidated)
	default:
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", topic, err)
	}
	return env, nil
}
