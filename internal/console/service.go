// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package console

import (
	"context"
	"time"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/session"
)

// API is the subset of the remote client used by the console services.
type API interface {
	ConsoleDashboard(ctx context.Context) (*models.ConsoleDashboard, error)

	ListLetters(ctx context.Context, q models.LetterQuery) (*client.Page[models.Letter], error)
	GetLetter(ctx context.Context, id string) (*models.Letter, error)
	UpdateLetter(ctx context.Context, id string, patch client.LetterPatch) (*models.Letter, error)
	UpdateLetterStatus(ctx context.Context, id, status, reason string) (*models.Letter, error)
	DeleteLetter(ctx context.Context, id string) error

	ListUsers(ctx context.Context, q models.ListQuery) (*client.Page[models.User], error)
	SearchUsers(ctx context.Context, text string, limit int) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserDetail(ctx context.Context, id string) (*models.UserDetail, error)
	GetUserStats(ctx context.Context, id string) (*models.UserStats, error)
	ListUserLetters(ctx context.Context, id string, q models.ListQuery) (*client.Page[models.Letter], error)
	UpdateUser(ctx context.Context, id string, patch client.UserPatch) (*models.User, error)
	BanUser(ctx context.Context, id, reason string) (*models.User, error)
	UnbanUser(ctx context.Context, id string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListAdmins(ctx context.Context, q models.AdminQuery) (*client.Page[models.Admin], error)
	GetAdmin(ctx context.Context, id string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, in client.AdminCreate) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, id string, patch client.AdminPatch) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, id string) error

	Login(ctx context.Context, username, password string) (*client.LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.Admin, error)
	ChangePassword(ctx context.Context, current, next string) error
}

var _ API = (*client.Client)(nil)

// Invalidator drops cached reads after a mutation.
type Invalidator interface {
	Invalidate(ctx context.Context, m cache.Mutation) error
}

// Service serves the console's home dashboard and its letters, users,
// admins and auth resources.
// Reads go through the cache; every successful mutation dispatches its
// invalidation entry.
type Service struct {
	api         API
	store       cache.Store
	invalidator Invalidator
	session     *session.Session
	ttl         time.Duration
}

// NewService creates a console service. When the session is rejected by
// the remote API every cached admin read is dropped.
func NewService(api API, store cache.Store, invalidator Invalidator, sess *session.Session, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	s := &Service{api: api, store: store, invalidator: invalidator, session: sess, ttl: ttl}
	if sess != nil {
		sess.OnUnauthorized(func() {
			s.invalidate(context.Background(), cache.MutationLogout)
		})
	}
	return s
}

// invalidate dispatches m on a detached context. Failures are logged; the
// mutation itself already succeeded.
func (s *Service) invalidate(ctx context.Context, m cache.Mutation) {
	if err := s.invalidator.Invalidate(context.WithoutCancel(ctx), m); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("mutation", string(m)).Msg("Cache invalidation failed")
	}
}

// cached reads key through the cache with the service TTL.
func cached[T any](ctx context.Context, s *Service, key cache.Key, load cache.Loader[T]) (T, error) {
	return cache.GetOrLoad(ctx, s.store, key, s.ttl, load)
}

// Overview returns the console home page: user and letter totals, physical
// fulfillment counts and the most recent users and letters.
func (s *Service) Overview(ctx context.Context) (*models.ConsoleDashboard, error) {
	return cached(ctx, s, cache.KeyConsoleDashboard, s.api.ConsoleDashboard)
}
