// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestGetOrLoad_CachesAfterFirstLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := KeyPhysicalRequests.WithParams(1)

	calls := 0
	load := func(context.Context) (*page, error) {
		calls++
		return &page{Items: []string{"R1"}, Total: 1}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoad(ctx, store, key, time.Minute, load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if got.Total != 1 || got.Items[0] != "R1" {
			t.Errorf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}

func TestGetOrLoad_ReloadsAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	d := NewDispatcher(store, DefaultInvalidationTable())
	key := KeyPhysicalRequests.WithParams(1)

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	first, _ := GetOrLoad(ctx, store, key, time.Minute, load)
	if err := d.Invalidate(ctx, MutationUpdateStatus); err != nil {
		t.Fatal(err)
	}
	second, _ := GetOrLoad(ctx, store, key, time.Minute, load)

	if first != 1 || second != 2 {
		t.Errorf("first=%d second=%d, want fresh load after invalidation", first, second)
	}
}

func TestGetOrLoad_LoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := KeyPhysicalStats
	boom := errors.New("upstream down")

	_, err := GetOrLoad(ctx, store, key, time.Minute, func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if present(store, key) {
		t.Error("failed load was cached")
	}
}

func TestGetOrLoad_UndecodableEntryReloads(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := KeyPhysicalStats
	_ = store.Set(ctx, key.String(), []byte("not json"), time.Minute)

	got, err := GetOrLoad(ctx, store, key, time.Minute, func(context.Context) (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Errorf("GetOrLoad = %d, %v", got, err)
	}
}

func TestGetOrLoad_InvalidationDuringLoadSkipsWrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	d := NewDispatcher(store, DefaultInvalidationTable())
	key := KeyPhysicalRequests.WithParams(1)

	got, err := GetOrLoad(ctx, store, key, time.Minute, func(ctx context.Context) (string, error) {
		if err := d.Invalidate(ctx, MutationUpdateStatus); err != nil {
			t.Fatal(err)
		}
		return "pre-mutation", nil
	})
	if err != nil || got != "pre-mutation" {
		t.Fatalf("GetOrLoad = %q, %v", got, err)
	}
	if present(store, key) {
		t.Error("value loaded across an invalidation was cached")
	}

	got, _ = GetOrLoad(ctx, store, key, time.Minute, func(context.Context) (string, error) { return "fresh", nil })
	if got != "fresh" || !present(store, key) {
		t.Errorf("second load = %q cached=%v, want fresh and cached", got, present(store, key))
	}
}

func TestGetOrLoad_UnrelatedInvalidationKeepsWrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	d := NewDispatcher(store, DefaultInvalidationTable())
	key := KeyPhysicalRequests.WithParams(1)

	_, _ = GetOrLoad(ctx, store, key, time.Minute, func(ctx context.Context) (int, error) {
		_ = d.Invalidate(ctx, MutationUserBan)
		return 1, nil
	})
	if !present(store, key) {
		t.Error("invalidation of another prefix blocked the write")
	}
}

func TestPutIfCurrent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	key := KeyDashboard.With("week")

	epoch := Epoch(store, key)
	if _, err := store.DeletePrefix(ctx, KeyPhysicalLetters.String()); err != nil {
		t.Fatal(err)
	}
	stored, err := PutIfCurrent(ctx, store, key, time.Minute, 1, epoch)
	if err != nil || stored {
		t.Fatalf("PutIfCurrent with stale epoch = %v, %v", stored, err)
	}

	stored, err = PutIfCurrent(ctx, store, key, time.Minute, 2, Epoch(store, key))
	if err != nil || !stored {
		t.Errorf("PutIfCurrent with current epoch = %v, %v", stored, err)
	}
}
