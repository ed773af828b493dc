// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
)

// ErrEmptyToken is returned by Establish for an empty token.
var ErrEmptyToken = errors.New("empty session token")

// Session is the operator's authentication context.
type Session struct {
	mu    sync.RWMutex
	state State
	// armed is true while an established session has not yet fired the
	// unauthorized callbacks.
	armed bool

	store Store
	authz *Authorizer
	now   func() time.Time

	hooksMu sync.RWMutex
	hooks   []func()
}

// New creates an empty session. store may be nil for no persistence and
// authz may be nil to deny every permission check.
func New(store Store, authz *Authorizer) *Session {
	if store == nil {
		store = NopStore{}
	}
	return &Session{store: store, authz: authz, now: time.Now}
}

// Restore loads a persisted session. An expired persisted session is
// cleared. A missing one is not an error.
func (s *Session) Restore(ctx context.Context) error {
	st, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if st.Token == "" || s.expired(st.ExpiresAt) {
		logging.Ctx(ctx).Info().Msg("Discarding expired persisted session")
		return s.store.Clear(ctx)
	}

	s.mu.Lock()
	s.state = *st
	s.armed = true
	s.mu.Unlock()

	logging.Ctx(ctx).Info().Str("admin", adminName(st.Admin)).Msg("Session restored")
	return nil
}

// Establish installs a new token and admin profile and persists them. The
// token expiry is read from its exp claim when the token is a JWT; the
// signature is not checked since the console is not the token's audience.
func (s *Session) Establish(ctx context.Context, token string, admin *models.Admin) error {
	if token == "" {
		return ErrEmptyToken
	}

	st := State{
		Token:         token,
		Admin:         cloneAdmin(admin),
		ExpiresAt:     tokenExpiry(token),
		EstablishedAt: s.now(),
	}

	s.mu.Lock()
	s.state = st
	s.armed = true
	s.mu.Unlock()

	if err := s.store.Save(ctx, &st); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SetAdmin replaces the admin profile, e.g. after reloading it.
func (s *Session) SetAdmin(ctx context.Context, admin *models.Admin) error {
	s.mu.Lock()
	if s.state.Token == "" {
		s.mu.Unlock()
		return nil
	}
	s.state.Admin = cloneAdmin(admin)
	st := s.state
	s.mu.Unlock()

	return s.store.Save(ctx, &st)
}

// Token returns the bearer token, or "" when unauthenticated or expired.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expired(s.state.ExpiresAt) {
		return ""
	}
	return s.state.Token
}

// Admin returns a copy of the current admin profile, or nil.
func (s *Session) Admin() *models.Admin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAdmin(s.state.Admin)
}

// ExpiresAt returns the token expiry; zero when unknown.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ExpiresAt
}

// IsAuthenticated reports whether a non-expired token is held.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Clear logs out locally: in-memory state and the persisted copy are
// removed. Unauthorized callbacks are not invoked.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.state = State{}
	s.armed = false
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}
	return nil
}

// OnUnauthorized registers fn to run when the remote API rejects the
// session.
func (s *Session) OnUnauthorized(fn func()) {
	s.hooksMu.Lock()
	s.hooks = append(s.hooks, fn)
	s.hooksMu.Unlock()
}

// HandleUnauthorized clears the session and runs the registered callbacks.
// token is the bearer token the rejected request carried. A 401 for any
// other token belongs to an earlier session and is ignored, so a late reply
// cannot log out an operator who has since signed in again. Concurrent 401s
// for the same session fire the callbacks once.
func (s *Session) HandleUnauthorized(ctx context.Context, token string) {
	s.mu.Lock()
	if !s.rejects(token) {
		s.mu.Unlock()
		logging.Ctx(ctx).Debug().Msg("Ignoring 401 for a superseded session token")
		return
	}
	fire := s.armed
	admin := adminName(s.state.Admin)
	s.state = State{}
	s.armed = false
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to clear persisted session")
	}
	if !fire {
		return
	}

	logging.Ctx(ctx).Warn().Str("admin", admin).Msg("Session rejected by API, logged out")

	s.hooksMu.RLock()
	hooks := append([]func(){}, s.hooks...)
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// rejects reports whether a 401 for a request sent with token applies to the
// current state. An expired session sends no token, so "" matches it.
// Callers hold s.mu.
func (s *Session) rejects(token string) bool {
	if token == s.state.Token {
		return true
	}
	return token == "" && s.expired(s.state.ExpiresAt)
}

// HasPermission reports whether the current admin holds p.
func (s *Session) HasPermission(p models.Permission) bool {
	if s.authz == nil || !s.IsAuthenticated() {
		return false
	}
	return s.authz.Allowed(s.Admin(), p)
}

func (s *Session) expired(at time.Time) bool {
	return !at.IsZero() && !s.now().Before(at)
}

// tokenExpiry returns the exp claim of a JWT, or zero for opaque tokens.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func cloneAdmin(a *models.Admin) *models.Admin {
	if a == nil {
		return nil
	}
	c := *a
	c.Permissions = append([]models.Permission(nil), a.Permissions...)
	return &c
}

func adminName(a *models.Admin) string {
	if a == nil {
		return ""
	}
	return a.Username
}
