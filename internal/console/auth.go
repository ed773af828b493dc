// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/validation"
)

var (
	// ErrNoSession is returned by operations that need a signed-in operator.
	ErrNoSession = errors.New("not signed in")
	// ErrDeleteSelf is returned when an operator deletes their own account.
	ErrDeleteSelf = errors.New("cannot delete the signed-in admin")
)

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// PasswordChange changes the signed-in operator's password.
type PasswordChange struct {
	Current string `json:"currentPassword" validate:"required"`
	Next    string `json:"newPassword" validate:"required,min=8,max=128,nefield=Current"`
}

// Login authenticates and establishes the session. Cached reads from any
// previous operator are dropped first.
func (s *Service) Login(ctx context.Context, c Credentials) (*models.Admin, error) {
	if err := validation.Validate(&c); err != nil {
		return nil, err
	}
	res, err := s.api.Login(ctx, c.Username, c.Password)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("username", c.Username).Msg("Login failed")
		return nil, err
	}

	s.invalidate(ctx, cache.MutationLogout)
	if err := s.session.Establish(ctx, res.Token, res.Admin); err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}
	logging.Ctx(ctx).Info().Str("username", c.Username).Msg("Admin signed in")
	return s.session.Admin(), nil
}

// Logout ends the session. The remote logout is best effort; the local
// session and cached admin reads are always cleared.
func (s *Service) Logout(ctx context.Context) error {
	if s.session.IsAuthenticated() {
		if err := s.api.Logout(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Remote logout failed, clearing local session anyway")
		}
	}
	err := s.session.Clear(ctx)
	s.invalidate(ctx, cache.MutationLogout)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Msg("Admin signed out")
	return nil
}

// Me returns the signed-in operator's profile, cached, and refreshes the
// session copy from it.
func (s *Service) Me(ctx context.Context) (*models.Admin, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNoSession
	}
	admin, err := cached(ctx, s, cache.KeyCurrentAdmin, s.api.Me)
	if err != nil {
		return nil, err
	}
	if err := s.session.SetAdmin(ctx, admin); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to persist refreshed admin profile")
	}
	return admin, nil
}

// ChangePassword changes the signed-in operator's password.
func (s *Service) ChangePassword(ctx context.Context, pc PasswordChange) error {
	if !s.session.IsAuthenticated() {
		return ErrNoSession
	}
	if err := validation.Validate(&pc); err != nil {
		return err
	}
	if err := s.api.ChangePassword(ctx, pc.Current, pc.Next); err != nil {
		return err
	}
	s.invalidate(ctx, cache.MutationPasswordChange)
	logging.Ctx(ctx).Info().Msg("Admin password changed")
	return nil
}
