// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/console"
	"github.com/tomtom215/letterdesk/internal/dashboard"
	"github.com/tomtom215/letterdesk/internal/events"
	"github.com/tomtom215/letterdesk/internal/fulfillment"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/session"
	"github.com/tomtom215/letterdesk/internal/stats"
)

// upstream fakes the remote admin API. Letters hold address arrays; status
// PATCHes rewrite them so read-backs observe the change. Ids listed in
// missing answer 404.
type upstream struct {
	mu      sync.Mutex
	letters []map[string]interface{}
	missing map[string]bool
	lists   int
	patches int
	deleted []string
	// hits counts GETs of the console dashboard and user endpoints.
	hits map[string]int
}

func newUpstream() *upstream {
	now := time.Now().UTC()
	at := func(d time.Duration) string { return now.Add(-d).Format(time.RFC3339) }
	return &upstream{
		missing: map[string]bool{},
		hits:    map[string]int{},
		letters: []map[string]interface{}{
			{
				"_id": "L1", "title": "Spring letter", "physicalRequested": true,
				"recipientAddresses": []map[string]interface{}{
					{"_id": "R1", "name": "Kim", "status": "requested", "requestedAt": at(3 * time.Hour), "updatedAt": at(3 * time.Hour)},
					{"_id": "R2", "name": "Lee", "status": "writing", "requestedAt": at(2 * time.Hour), "updatedAt": at(time.Hour)},
				},
			},
			{
				"_id": "L2", "title": "Autumn letter", "physicalRequested": true,
				"recipientAddresses": []map[string]interface{}{
					{"_id": "R3", "name": "Park", "status": "sent", "requestedAt": at(5 * time.Hour), "updatedAt": at(30 * time.Minute)},
				},
			},
		},
	}
}

func (u *upstream) markMissing(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.missing[id] = true
}

// counts returns the list and patch call counts.
func (u *upstream) counts() (lists, patches int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lists, u.patches
}

func (u *upstream) hitCount(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *upstream) deletedIDs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.deleted...)
}

func (u *upstream) admin(username string) map[string]interface{} {
	role := models.RoleAdmin
	if username == "manager" {
		role = models.RoleManager
	}
	return map[string]interface{}{"_id": "a-" + username, "username": username, "name": username, "role": role, "status": "active"}
}

func (u *upstream) letterFor(id string) map[string]interface{} {
	for _, l := range u.letters {
		if l["_id"] == id {
			return l
		}
		for _, a := range l["recipientAddresses"].([]map[string]interface{}) {
			if a["_id"] == id {
				return l
			}
		}
	}
	return nil
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/")
	body, _ := io.ReadAll(r.Body)

	if path != "admin/auth/login" && r.Header.Get("Authorization") != "Bearer upstream-token" {
		writeUpstreamError(w, http.StatusUnauthorized, "token expired")
		return
	}

	var data interface{}
	switch {
	case r.Method == http.MethodPost && path == "admin/auth/login":
		var creds struct{ Username, Password string }
		_ = json.Unmarshal(body, &creds)
		if creds.Password != "secret" {
			writeUpstreamError(w, http.StatusUnauthorized, "bad credentials")
			return
		}
		data = map[string]interface{}{"token": "upstream-token", "admin": u.admin(creds.Username)}
	case r.Method == http.MethodPost && path == "admin/auth/logout":
		data = map[string]bool{"ok": true}
	case r.Method == http.MethodGet && path == "admin/auth/me":
		data = u.admin("ops")
	case r.Method == http.MethodGet && path == "admin/physical-requests":
		u.lists++
		data = u.letters
	case r.Method == http.MethodGet && path == "admin/physical-requests/export":
		data = u.letters
	case strings.HasPrefix(path, "admin/physical-requests/"):
		id := strings.TrimPrefix(path, "admin/physical-requests/")
		if u.missing[id] {
			writeUpstreamError(w, http.StatusNotFound, "no such request")
			return
		}
		switch r.Method {
		case http.MethodGet:
			l := u.letterFor(id)
			if l == nil {
				writeUpstreamError(w, http.StatusNotFound, "no such request")
				return
			}
			data = l
		case http.MethodPatch:
			u.patches++
			var patch client.StatusPatch
			_ = json.Unmarshal(body, &patch)
			u.setStatus(id, string(patch.Status))
			data = map[string]bool{"ok": true}
		}
	case r.Method == http.MethodGet && path == "admin/dashboard":
		u.hits[path]++
		data = map[string]interface{}{
			"users":           map[string]interface{}{"total": 12, "today": 1, "byStatus": map[string]int{"active": 11, "banned": 1}},
			"letters":         map[string]interface{}{"total": 2, "letters": 2},
			"physicalLetters": map[string]int{"total": 3, "requested": 1, "writing": 1, "sent": 1},
			"categories":      []map[string]interface{}{{"name": "family", "count": 2}},
			"recentUsers":     []map[string]string{{"_id": "U1", "name": "Kim"}},
			"recentLetters":   []map[string]string{{"_id": "L1", "title": "Spring"}},
		}
	case r.Method == http.MethodGet && strings.HasPrefix(path, "admin/users/"):
		u.hits[path]++
		rest := strings.Split(strings.TrimPrefix(path, "admin/users/"), "/")
		if len(rest) != 2 {
			writeUpstreamError(w, http.StatusNotFound, "route not found")
			return
		}
		id := rest[0]
		switch rest[1] {
		case "detail":
			data = map[string]interface{}{"_id": id, "name": "Kim", "stats": map[string]int{"totalLetters": 2}}
		case "stats":
			data = map[string]int{"totalLetters": 2, "totalViews": 40}
		case "letters":
			data = []map[string]string{{"_id": "L1", "userId": id, "status": r.URL.Query().Get("status")}}
		default:
			writeUpstreamError(w, http.StatusNotFound, "route not found")
			return
		}
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "admin/admins/"):
		u.deleted = append(u.deleted, strings.TrimPrefix(path, "admin/admins/"))
		data = map[string]bool{"ok": true}
	default:
		writeUpstreamError(w, http.StatusNotFound, "route not found")
		return
	}

	raw, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(models.Envelope{Success: true, Data: raw})
}

func (u *upstream) setStatus(id, s string) {
	for _, l := range u.letters {
		for _, a := range l["recipientAddresses"].([]map[string]interface{}) {
			if a["_id"] == id {
				a["status"] = s
				a["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
			}
		}
	}
}

func writeUpstreamError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(models.Envelope{Success: false, Message: msg})
}

// testConsole is a router wired to a fake upstream through the real
// client, session and services.
type testConsole struct {
	backend *upstream
	session *session.Session
	store   *cache.MemoryStore
	router  http.Handler
}

func newTestConsole(t *testing.T) *testConsole {
	t.Helper()

	backend := newUpstream()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	authz, err := session.NewAuthorizer(models.RolePermissions)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	sess := session.New(nil, authz)

	api, err := client.New(client.Config{
		BaseURL:        server.URL + "/api",
		RetryBaseDelay: time.Millisecond,
	}, sess)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}

	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	dispatcher := cache.NewDispatcher(store, cache.DefaultInvalidationTable())

	bus := events.NewBus(events.BusConfig{})
	t.Cleanup(func() { _ = bus.Close() })
	recorder := events.NewRecorder(bus, 32)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = recorder.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	<-recorder.Ready()

	handler, err := NewHandler(Deps{
		Fulfillment: fulfillment.NewService(api, dispatcher, bus, fulfillment.Config{VerifyBaseDelay: time.Millisecond}),
		Reader:      fulfillment.NewReader(api, store, time.Minute),
		Stats:       stats.NewService(api, store, stats.ServiceConfig{}),
		Dashboard:   dashboard.NewService(api, store, time.Minute),
		Console:     console.NewService(api, store, dispatcher, sess, time.Minute),
		Session:     sess,
		Events:      recorder,
		Upstream:    api,
		Cache:       store,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	return &testConsole{
		backend: backend,
		session: sess,
		store:   store,
		router:  NewRouter(handler, nil).SetupChi(),
	}
}

// do sends one request through the router.
func (c *testConsole) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)
	return rec
}

// login signs in as username through the HTTP surface.
func (c *testConsole) login(t *testing.T, username string) {
	t.Helper()
	rec := c.do(t, http.MethodPost, "/api/session/login", map[string]string{"username": username, "password": "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
}

// decodeResponse decodes the envelope and, when data is non-nil, its data.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) APIResponse {
	t.Helper()
	var envelope struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", envelope.Data, err)
		}
	}
	return envelope.APIResponse
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	resp := decodeResponse(t, rec, nil)
	if resp.Success || resp.Error == nil || resp.Error.Code != code {
		t.Errorf("error = %+v, want code %s", resp.Error, code)
	}
}
