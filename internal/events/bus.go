// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/metrics"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus is closed")

// BusConfig configures a Bus.
type BusConfig struct {
	// OutputBuffer is the per-subscriber channel buffer.
	OutputBuffer int64
	// Logger defaults to the zerolog adapter.
	Logger watermill.LoggerAdapter
}

// Bus is the in-process event bus. Publishing never blocks on subscribers
// and events published while nobody subscribes are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus backed by a watermill GoChannel.
func NewBus(cfg BusConfig) *Bus {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewWatermillAdapter("events")
	}
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = 256
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.OutputBuffer}, logger),
	}
}

// PublishStatusChanged publishes ev on TopicStatusChanged.
func (b *Bus) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	stamp(&ev.EventID, &ev.Timestamp, &ev.SchemaVersion)
	if ev.CorrelationID == "" {
		ev.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	return b.publish(ctx, TopicStatusChanged, ev.EventID, ev)
}

// PublishCacheInvalidated publishes ev on TopicCacheInvalidated.
func (b *Bus) PublishCacheInvalidated(ctx context.Context, ev CacheInvalidated) error {
	stamp(&ev.EventID, &ev.Timestamp, &ev.SchemaVersion)
	if ev.CorrelationID == "" {
		ev.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	return b.publish(ctx, TopicCacheInvalidated, ev.EventID, ev)
}

func (b *Bus) publish(ctx context.Context, topic, id string, payload interface{}) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		return fmt.Errorf("marshal %s: %w", topic, err)
	}

	msg := message.NewMessage(id, data)
	msg.SetContext(ctx)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set("correlation_id", cid)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic, "success").Inc()
	return nil
}

// Subscribe returns the message channel for topic. The channel closes when
// ctx is done or the bus is closed. Messages must be acked.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.pubsub.Subscribe(ctx, topic)
}

// InvalidationListener returns a cache.Listener that republishes every
// dispatched invalidation as a CacheInvalidated event.
func (b *Bus) InvalidationListener() cache.Listener {
	return func(ctx context.Context, inv cache.Invalidation) {
		keys := make([]string, len(inv.Keys))
		for i, k := range inv.Keys {
			keys[i] = k.String()
		}
		err := b.PublishCacheInvalidated(ctx, CacheInvalidated{
			Mutation:  string(inv.Mutation),
			Keys:      keys,
			Removed:   inv.Removed,
			Timestamp: inv.At,
		})
		if err != nil && !errors.Is(err, ErrClosed) {
			logging.Ctx(ctx).Warn().Err(err).Str("mutation", string(inv.Mutation)).Msg("Failed to publish invalidation event")
		}
	}
}

// Close shuts the bus down. Subscriber channels are closed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.pubsub.Close()
}

// topicsString joins topics for logging.
func topicsString(topics []string) string {
	return strings.Join(topics, ",")
}
