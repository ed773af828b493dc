// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package events

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/tomtom215/letterdesk/internal/logging"
)

// DefaultRecorderSize is the number of events a Recorder keeps.
const DefaultRecorderSize = 200

// Recorder keeps the most recent events of every topic for the console's
// activity feed. It is a suture.Service.
type Recorder struct {
	bus    *Bus
	topics []string

	mu    sync.RWMutex
	ring  []Envelope
	next  int
	count int

	ready     chan struct{}
	readyOnce sync.Once
}

// NewRecorder creates a recorder of the last size events. size <= 0 uses
// DefaultRecorderSize.
func NewRecorder(bus *Bus, size int) *Recorder {
	if size <= 0 {
		size = DefaultRecorderSize
	}
	return &Recorder{
		bus:    bus,
		topics: []string{TopicStatusChanged, TopicCacheInvalidated},
		ring:   make([]Envelope, size),
		ready:  make(chan struct{}),
	}
}

// Serve subscribes to every topic and records until ctx is done.
func (r *Recorder) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	merged := make(chan *message.Message)
	var wg sync.WaitGroup
	for _, topic := range r.topics {
		ch, err := r.bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func(topic string, ch <-chan *message.Message) {
			defer wg.Done()
			for msg := range ch {
				msg.Metadata.Set("topic", topic)
				select {
				case merged <- msg:
				case <-ctx.Done():
					msg.Nack()
					return
				}
			}
		}(topic, ch)
	}
	r.readyOnce.Do(func() { close(r.ready) })

	logger := logging.WithComponent("event-recorder")
	logger.Info().Str("topics", topicsString(r.topics)).Msg("Event recorder started")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case msg := <-merged:
			r.handle(msg)
		case <-done:
			return ctx.Err()
		case <-ctx.Done():
			<-done
			return ctx.Err()
		}
	}
}

// Ready is closed once Serve has subscribed.
func (r *Recorder) Ready() <-chan struct{} {
	return r.ready
}

func (r *Recorder) handle(msg *message.Message) {
	defer msg.Ack()

	topic := msg.Metadata.Get("topic")
	env, err := decode(topic, msg.Payload)
	if err != nil {
		logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("Dropping undecodable event")
		return
	}

	r.mu.Lock()
	r.ring[r.next] = *env
	r.next = (r.next + 1) % len(r.ring)
	if r.count < len(r.ring) {
		r.count++
	}
	r.mu.Unlock()
}

// Recent returns up to limit events, newest first. limit <= 0 returns all.
func (r *Recorder) Recent(limit int) []Envelope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Envelope, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.next - 1 - i + len(r.ring)) % len(r.ring)
		out = append(out, r.ring[idx])
	}
	return out
}

// String implements fmt.Stringer for supervisor logs.
func (r *Recorder) String() string {
	return "event-recorder"
}
