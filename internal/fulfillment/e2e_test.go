// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package fulfillment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/letterdesk/internal/aggregate"
	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/session"
	"github.com/tomtom215/letterdesk/internal/status"
)

// letterServer serves one address-array letter and applies status PATCHes.
type letterServer struct {
	mu        sync.Mutex
	addresses []map[string]interface{}
	lists     int
}

func (s *letterServer) letter() map[string]interface{} {
	return map[string]interface{}{
		"_id":                "L1",
		"title":              "Spring letter",
		"physicalRequested":  true,
		"recipientAddresses": s.addresses,
	}
}

func (s *letterServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data interface{}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/admin/physical-requests":
		s.lists++
		data = []interface{}{s.letter()}
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/admin/physical-requests/"):
		data = s.letter()
	case r.Method == http.MethodPatch:
		id := strings.TrimPrefix(r.URL.Path, "/api/admin/physical-requests/")
		body, _ := io.ReadAll(r.Body)
		var patch client.StatusPatch
		_ = json.Unmarshal(body, &patch)
		for _, a := range s.addresses {
			if a["_id"] == id {
				a["status"] = patch.Status
				a["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
			}
		}
	default:
		http.NotFound(w, r)
		return
	}

	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.Envelope{Success: true, Data: raw})
}

func TestUpdateStatus_EndToEndAggregate(t *testing.T) {
	base := time.Now().UTC().Add(-time.Hour)
	at := func(d time.Duration) string { return base.Add(d).Format(time.RFC3339) }

	backend := &letterServer{addresses: []map[string]interface{}{
		{"_id": "R1", "name": "Kim", "status": "requested", "requestedAt": at(0), "updatedAt": at(0)},
		{"_id": "R2", "name": "Lee", "status": "writing", "requestedAt": at(time.Minute), "updatedAt": at(10 * time.Minute)},
		{"_id": "R3", "name": "Park", "status": "writing", "requestedAt": at(2 * time.Minute), "updatedAt": at(5 * time.Minute)},
	}}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	ctx := context.Background()
	sess := session.New(nil, nil)
	if err := sess.Establish(ctx, "test-token", &models.Admin{ID: "a1", Role: models.RoleAdmin}); err != nil {
		t.Fatal(err)
	}
	api, err := client.New(client.Config{BaseURL: server.URL + "/api", RetryBaseDelay: time.Millisecond}, sess)
	if err != nil {
		t.Fatal(err)
	}

	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	svc := NewService(api, cache.NewDispatcher(store, cache.DefaultInvalidationTable()), nil, Config{VerifyBaseDelay: time.Millisecond})

	key := cache.KeyPhysicalRequests.WithParams(models.RequestQuery{})
	list := func(ctx context.Context) (*models.RequestPage, error) {
		return api.ListPhysicalRequests(ctx, models.RequestQuery{})
	}
	if _, err := cache.GetOrLoad(ctx, store, key, 0, list); err != nil {
		t.Fatalf("initial list: %v", err)
	}

	res, err := svc.UpdateStatus(ctx, UpdateRequest{RequestID: "R3", Status: status.Sent})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if !res.Verified || res.Attempts != 1 {
		t.Errorf("result = %+v, want verified on first read", res)
	}

	page, err := cache.GetOrLoad(ctx, store, key, 0, list)
	if err != nil {
		t.Fatal(err)
	}
	if backend.lists != 2 {
		t.Errorf("list fetched %d times, want a fresh fetch after the update", backend.lists)
	}

	summaries := aggregate.ByLetter(page.Requests)
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	if got := summaries[0]; got.TotalRequests != 3 || got.CurrentStatus != status.Sent {
		t.Errorf("summary: total=%d current=%s, want 3 and sent", got.TotalRequests, got.CurrentStatus)
	}
}
