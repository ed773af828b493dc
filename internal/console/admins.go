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

// NewAdmin describes an operator account to create.
type NewAdmin struct {
	Username    string              `json:"username" validate:"required,min=3,max=64"`
	Password    string              `json:"password" validate:"required,min=8,max=128"`
	Name        string              `json:"name" validate:"required,max=100"`
	Role        models.AdminRole    `json:"role" validate:"omitempty,oneof=super_admin admin manager"`
	Permissions []models.Permission `json:"permissions"`
	Department  string              `json:"department" validate:"max=100"`
}

// ListAdmins returns one cached page of operators.
func (s *Service) ListAdmins(ctx context.Context, q models.AdminQuery) (*client.Page[models.Admin], error) {
	return cached(ctx, s, cache.KeyAdmins.WithParams(q), func(ctx context.Context) (*client.Page[models.Admin], error) {
		return s.api.ListAdmins(ctx, q)
	})
}

// GetAdmin returns one cached operator.
func (s *Service) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	return cached(ctx, s, cache.KeyAdmins.With("detail", id), func(ctx context.Context) (*models.Admin, error) {
		return s.api.GetAdmin(ctx, id)
	})
}

// CreateAdmin creates an operator account. The password is passed through
// the client's PasswordEncrypter.
func (s *Service) CreateAdmin(ctx context.Context, in NewAdmin) (*models.Admin, error) {
	if err := validation.Validate(&in); err != nil {
		return nil, err
	}
	a, err := s.api.CreateAdmin(ctx, client.AdminCreate{
		Username:    in.Username,
		Password:    in.Password,
		Name:        in.Name,
		Role:        in.Role,
		Permissions: in.Permissions,
		Department:  in.Department,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.MutationAdminCreate)
	logging.Ctx(ctx).Info().Str("username", in.Username).Str("role", string(in.Role)).Msg("Admin created")
	return a, nil
}

// UpdateAdmin edits an operator. Editing the signed-in operator also drops
// the cached profile.
func (s *Service) UpdateAdmin(ctx context.Context, id string, patch client.AdminPatch) (*models.Admin, error) {
	a, err := s.api.UpdateAdmin(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.MutationAdminUpdate)
	return a, nil
}

// DeleteAdmin removes an operator. Operators cannot delete themselves.
func (s *Service) DeleteAdmin(ctx context.Context, id string) error {
	if s.session != nil {
		if me := s.session.Admin(); me != nil && me.ID == id {
			return ErrDeleteSelf
		}
	}
	if err := s.api.DeleteAdmin(ctx, id); err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	s.invalidate(ctx, cache.MutationAdminDelete)
	logging.Ctx(ctx).Info().Str("admin_id", id).Msg("Admin deleted")
	return nil
}
