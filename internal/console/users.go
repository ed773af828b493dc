// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package console

import (
	"context"
	"fmt"

	"github.com/tomtom215/letterdesk/internal/cache"
	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
	"github.com/tomtom215/letterdesk/internal/validation"
)

// DefaultSearchLimit caps user search results when no limit is given.
const DefaultSearchLimit = 20

// BanRequest bans a user account.
type BanRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ListUsers returns one cached page of users.
func (s *Service) ListUsers(ctx context.Context, q models.ListQuery) (*client.Page[models.User], error) {
	return cached(ctx, s, cache.KeyUsers.WithParams(q), func(ctx context.Context) (*client.Page[models.User], error) {
		return s.api.ListUsers(ctx, q)
	})
}

// SearchUsers is not cached; results are typed-ahead and short lived.
func (s *Service) SearchUsers(ctx context.Context, text string, limit int) ([]models.User, error) {
	if text == "" {
		return []models.User{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return s.api.SearchUsers(ctx, text, limit)
}

// GetUser returns one cached user.
func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	return cached(ctx, s, cache.KeyUsers.With("detail", id), func(ctx context.Context) (*models.User, error) {
		return s.api.GetUser(ctx, id)
	})
}

// GetUserDetail returns a user with its activity summary.
func (s *Service) GetUserDetail(ctx context.Context, id string) (*models.UserDetail, error) {
	return cached(ctx, s, cache.KeyUsers.With(id, "detail"), func(ctx context.Context) (*models.UserDetail, error) {
		return s.api.GetUserDetail(ctx, id)
	})
}

// GetUserStats returns a user's activity summary.
func (s *Service) GetUserStats(ctx context.Context, id string) (*models.UserStats, error) {
	return cached(ctx, s, cache.KeyUsers.With(id, "stats"), func(ctx context.Context) (*models.UserStats, error) {
		return s.api.GetUserStats(ctx, id)
	})
}

// ListUserLetters returns one cached page of a user's letters.
func (s *Service) ListUserLetters(ctx context.Context, id string, q models.ListQuery) (*client.Page[models.Letter], error) {
	return cached(ctx, s, cache.KeyUsers.With(id, "letters").WithParams(q), func(ctx context.Context) (*client.Page[models.Letter], error) {
		return s.api.ListUserLetters(ctx, id, q)
	})
}

// UpdateUser edits a user's profile.
func (s *Service) UpdateUser(ctx context.Context, id string, patch client.UserPatch) (*models.User, error) {
	u, err := s.api.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.MutationUserUpdate)
	return u, nil
}

// BanUser bans a user. A reason is required.
func (s *Service) BanUser(ctx context.Context, id string, req BanRequest) (*models.User, error) {
	if err := validation.Validate(&req); err != nil {
		return nil, err
	}
	u, err := s.api.BanUser(ctx, id, req.Reason)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.MutationUserBan)
	logging.Ctx(ctx).Info().Str("user_id", id).Msg("User banned")
	return u, nil
}

// UnbanUser lifts a ban.
func (s *Service) UnbanUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.api.UnbanUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.MutationUserUnban)
	logging.Ctx(ctx).Info().Str("user_id", id).Msg("User unbanned")
	return u, nil
}

// DeleteUser removes a user and, server-side, their letters.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.invalidate(ctx, cache.MutationUserDelete)
	logging.Ctx(ctx).Info().Str("user_id", id).Msg("User deleted")
	return nil
}
