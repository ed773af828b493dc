// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a cached item with expiration.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Stats tracks MemoryStore performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// MemoryStore is a thread-safe in-memory TTL cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	epochs  epochs
	ttl     time.Duration
	stats   Stats
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a MemoryStore and starts its cleanup loop.
//
// Parameters:
//   - ttl: expiration used when Set is called with a non-positive ttl
//
// Example:
//
//	store := cache.NewMemoryStore(5 * time.Minute)
//	defer store.Close()
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		entries: make(map[string]entry),
		epochs:  newEpochs(),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	m.stats.LastCleanup = m.now()
	go m.cleanupLoop(time.Minute)
	return m
}

// Backend implements Store.
func (m *MemoryStore) Backend() string { return string(TypeMemory) }

// Get implements Store. Expired entries are removed and count as misses.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		m.record(func(s *Stats) { s.Misses++ })
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.stats.Misses++
		m.stats.Evictions++
		m.stats.TotalKeys = int64(len(m.entries))
		m.mu.Unlock()
		return nil, false, nil
	}

	m.record(func(s *Stats) { s.Hits++ })
	return e.data, true, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	buf := make([]byte, len(value))
	copy(buf, value)

	m.mu.Lock()
	m.entries[key] = entry{data: buf, expiresAt: m.now().Add(ttl)}
	m.stats.TotalKeys = int64(len(m.entries))
	m.mu.Unlock()
	return nil
}

// SetIfEpoch implements Store.
func (m *MemoryStore) SetIfEpoch(_ context.Context, key string, value []byte, ttl time.Duration, epoch uint64) (bool, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}
	buf := make([]byte, len(value))
	copy(buf, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epochs.of(key) != epoch {
		return false, nil
	}
	m.entries[key] = entry{data: buf, expiresAt: m.now().Add(ttl)}
	m.stats.TotalKeys = int64(len(m.entries))
	return true, nil
}

// Epoch implements Store.
func (m *MemoryStore) Epoch(key string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epochs.of(key)
}

// DeletePrefix implements Store.
func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epochs.bump(prefix)
	removed := 0
	for key := range m.entries {
		if matchesPrefix(key, prefix) {
			delete(m.entries, key)
			removed++
		}
	}
	m.stats.Evictions += int64(removed)
	m.stats.TotalKeys = int64(len(m.entries))
	return removed, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.epochs.bumpAll()
	m.stats.Evictions += int64(len(m.entries))
	m.entries = make(map[string]entry)
	m.stats.TotalKeys = 0
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// GetStats returns a snapshot of the store statistics.
func (m *MemoryStore) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// HitRate returns hits / (hits + misses) as a percentage.
func (m *MemoryStore) HitRate() float64 {
	s := m.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Close stops the cleanup loop. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryStore) record(fn func(*Stats)) {
	m.mu.Lock()
	fn(&m.stats)
	m.mu.Unlock()
}

func (m *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *MemoryStore) cleanup() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			m.stats.Evictions++
		}
	}
	m.stats.TotalKeys = int64(len(m.entries))
	m.stats.LastCleanup = now
}

var _ Store = (*MemoryStore)(nil)
