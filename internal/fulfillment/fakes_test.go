// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/status"
)

var errTransport = errors.New("connection reset")

// callLog records calls from every fake in order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(prefix string) int {
	n := 0
	for _, c := range l.snapshot() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// fakeAPI is an in-memory remote API. When apply is set a successful PATCH
// changes what GET returns.
type fakeAPI struct {
	log   *callLog
	apply bool

	mu       sync.Mutex
	remote   map[string]status.Status
	patchErr map[string]error
	getErr   error

	bulkResult *models.BulkResult
	bulkErr    error
	bulkPatch  client.BulkPatch

	patchDelay  time.Duration
	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func newFakeAPI(log *callLog) *fakeAPI {
	return &fakeAPI{
		log:      log,
		apply:    true,
		remote:   map[string]status.Status{},
		patchErr: map[string]error{},
	}
}

func (f *fakeAPI) UpdatePhysicalStatus(_ context.Context, id string, patch client.StatusPatch) error {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		m := f.maxInflight.Load()
		if n <= m || f.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.patchDelay > 0 {
		time.Sleep(f.patchDelay)
	}

	f.log.add("patch:%s:%s", id, patch.Status)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.patchErr[id]; err != nil {
		return err
	}
	if f.apply {
		f.remote[id] = status.Status(patch.Status)
	}
	return nil
}

func (f *fakeAPI) UpdateShipping(_ context.Context, id string, patch client.ShippingPatch) error {
	f.log.add("shipping:%s:%s:%s", id, patch.ShippingCompany, patch.EstimatedDelivery)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.patchErr[id]
}

func (f *fakeAPI) BulkUpdatePhysical(_ context.Context, patch client.BulkPatch) (*models.BulkResult, error) {
	f.log.add("bulk:%d", len(patch.LetterIDs)+len(patch.RequestIDs))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkPatch = patch
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	return f.bulkResult, nil
}

func (f *fakeAPI) GetPhysicalRequest(_ context.Context, id string) (*models.PhysicalRequest, error) {
	f.log.add("get:%s", id)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	st, ok := f.remote[id]
	if !ok {
		st = status.Requested
	}
	return &models.PhysicalRequest{RequestID: id, Status: st}, nil
}

// loggingInvalidator wraps a dispatcher and logs every invalidation.
type loggingInvalidator struct {
	log  *callLog
	next Invalidator
	err  error
}

func (i *loggingInvalidator) Invalidate(ctx context.Context, m cache.Mutation) error {
	i.log.add("invalidate:%s", m)
	if i.err != nil {
		return i.err
	}
	if i.next != nil {
		return i.next.Invalidate(ctx, m)
	}
	return nil
}

type harness struct {
	svc   *Service
	api   *fakeAPI
	inv   *loggingInvalidator
	log   *callLog
	store *cache.MemoryStore
	waits []time.Duration
	mu    sync.Mutex
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	log := &callLog{}
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		api:   newFakeAPI(log),
		log:   log,
		store: store,
	}
	h.inv = &loggingInvalidator{log: log, next: cache.NewDispatcher(store, cache.DefaultInvalidationTable())}
	h.svc = NewService(h.api, h.inv, nil, cfg)
	h.svc.wait = func(ctx context.Context, d time.Duration) error {
		h.mu.Lock()
		h.waits = append(h.waits, d)
		h.mu.Unlock()
		return ctx.Err()
	}
	return h
}

func (h *harness) recordedWaits() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]time.Duration(nil), h.waits...)
}
