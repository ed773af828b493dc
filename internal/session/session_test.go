// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tomtom215/letterdesk/internal/models"
)

func newBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func testAdmin(role models.AdminRole, perms ...models.Permission) *models.Admin {
	return &models.Admin{ID: "a1", Username: "operator", Role: role, Permissions: perms}
}

func TestSession_EstablishAndPersist(t *testing.T) {
	ctx := context.Background()
	store := newBadgerStore(t)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)

	s := New(store, nil)
	if err := s.Establish(ctx, token, testAdmin(models.RoleAdmin)); err != nil {
		t.Fatalf("Establish: %v", err)
	}
	if !s.IsAuthenticated() || s.Token() != token {
		t.Fatal("session not authenticated after Establish")
	}
	if !s.ExpiresAt().Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt(), exp)
	}

	restored := New(store, nil)
	if err := restored.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Token() != token {
		t.Error("restored session lost token")
	}
	if restored.Admin() == nil || restored.Admin().Username != "operator" {
		t.Errorf("restored admin = %+v", restored.Admin())
	}
}

func TestSession_EmptyToken(t *testing.T) {
	if err := New(nil, nil).Establish(context.Background(), "", nil); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("expected ErrEmptyToken, got %v", err)
	}
}

func TestSession_OpaqueTokenNeverExpires(t *testing.T) {
	s := New(nil, nil)
	if err := s.Establish(context.Background(), "opaque-token", nil); err != nil {
		t.Fatal(err)
	}
	if !s.ExpiresAt().IsZero() {
		t.Errorf("opaque token got expiry %v", s.ExpiresAt())
	}
	if !s.IsAuthenticated() {
		t.Error("opaque token should authenticate")
	}
}

func TestSession_ExpiredToken(t *testing.T) {
	s := New(nil, nil)
	now := time.Now()
	s.now = func() time.Time { return now }

	_ = s.Establish(context.Background(), signedToken(t, now.Add(time.Minute)), nil)
	if !s.IsAuthenticated() {
		t.Fatal("fresh token rejected")
	}

	now = now.Add(2 * time.Minute)
	if s.IsAuthenticated() || s.Token() != "" {
		t.Error("expired token still returned")
	}
}

func TestSession_RestoreDiscardsExpired(t *testing.T) {
	ctx := context.Background()
	store := newBadgerStore(t)
	_ = store.Save(ctx, &State{Token: "t", ExpiresAt: time.Now().Add(-time.Hour)})

	s := New(store, nil)
	if err := s.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("expired persisted session restored")
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("expired session not cleared from store: %v", err)
	}
}

func TestSession_RestoreEmptyStore(t *testing.T) {
	if err := New(newBadgerStore(t), nil).Restore(context.Background()); err != nil {
		t.Errorf("Restore on empty store: %v", err)
	}
}

func TestSession_HandleUnauthorized(t *testing.T) {
	ctx := context.Background()
	store := newBadgerStore(t)
	s := New(store, nil)
	_ = s.Establish(ctx, "token", testAdmin(models.RoleAdmin))

	var calls atomic.Int32
	s.OnUnauthorized(func() { calls.Add(1) })
	s.OnUnauthorized(func() { calls.Add(10) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.HandleUnauthorized(ctx, "token")
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != 11 {
		t.Errorf("callbacks fired %d, want each once (11)", got)
	}
	if s.IsAuthenticated() {
		t.Error("session still authenticated after 401")
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("persisted session not cleared: %v", err)
	}

	// A new session re-arms the callbacks.
	_ = s.Establish(ctx, "token-2", nil)
	s.HandleUnauthorized(ctx, "token-2")
	if got := calls.Load(); got != 22 {
		t.Errorf("callbacks after re-login = %d, want 22", got)
	}
}

func TestSession_LateUnauthorizedForOldToken(t *testing.T) {
	ctx := context.Background()
	store := newBadgerStore(t)
	s := New(store, nil)

	_ = s.Establish(ctx, "token-A", testAdmin(models.RoleAdmin))
	sent := s.Token()
	_ = s.Establish(ctx, "token-B", testAdmin(models.RoleAdmin))

	fired := false
	s.OnUnauthorized(func() { fired = true })
	s.HandleUnauthorized(ctx, sent)

	if got := s.Token(); got != "token-B" {
		t.Errorf("token after late 401 = %q, want token-B", got)
	}
	if fired {
		t.Error("late 401 for the previous token fired hooks")
	}
	if _, err := store.Load(ctx); err != nil {
		t.Errorf("persisted session removed by late 401: %v", err)
	}

	s.HandleUnauthorized(ctx, "token-B")
	if s.IsAuthenticated() || !fired {
		t.Errorf("401 for current token: authenticated=%v fired=%v", s.IsAuthenticated(), fired)
	}
}

func TestSession_UnauthorizedAfterExpiry(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	now := time.Now()
	s.now = func() time.Time { return now }
	_ = s.Establish(ctx, "token", nil)

	s.mu.Lock()
	s.state.ExpiresAt = now.Add(time.Minute)
	s.mu.Unlock()
	now = now.Add(2 * time.Minute)

	fired := false
	s.OnUnauthorized(func() { fired = true })
	// An expired session sends requests without a token.
	s.HandleUnauthorized(ctx, s.Token())
	if !fired {
		t.Error("401 after expiry did not fire hooks")
	}
}

func TestSession_ClearDoesNotFireHooks(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)
	_ = s.Establish(ctx, "token", nil)

	fired := false
	s.OnUnauthorized(func() { fired = true })
	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if fired {
		t.Error("explicit logout fired unauthorized hooks")
	}
	s.HandleUnauthorized(ctx, "token")
	if fired {
		t.Error("401 after logout fired hooks")
	}
}

func TestSession_AdminIsCopied(t *testing.T) {
	s := New(nil, nil)
	admin := testAdmin(models.RoleManager, models.PermUsersRead)
	_ = s.Establish(context.Background(), "token", admin)

	admin.Username = "changed"
	admin.Permissions[0] = models.PermAdminsDelete

	got := s.Admin()
	if got.Username != "operator" || got.Permissions[0] != models.PermUsersRead {
		t.Errorf("session shares caller's admin: %+v", got)
	}
}
