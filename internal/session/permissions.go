// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package session

import (
	"fmt"
	"slices"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
)

// rbacModel grants super_admin everything and otherwise requires an exact
// role/permission policy.
const rbacModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == "super_admin" || (r.sub == p.sub && r.act == p.act)
`

// Authorizer decides whether an admin holds a permission.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorizer builds an authorizer from a role grant table. A nil table
// uses models.RolePermissions.
func NewAuthorizer(grants map[models.AdminRole][]models.Permission) (*Authorizer, error) {
	if grants == nil {
		grants = models.RolePermissions
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	for role, perms := range grants {
		for _, p := range perms {
			if _, err := enforcer.AddPolicy(string(role), string(p)); err != nil {
				return nil, fmt.Errorf("failed to add policy %s %s: %w", role, p, err)
			}
		}
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Allowed reports whether admin holds p. A nil admin holds nothing.
func (a *Authorizer) Allowed(admin *models.Admin, p models.Permission) bool {
	if admin == nil {
		return false
	}
	if admin.Role == models.RoleSuperAdmin {
		return true
	}

	ok, err := a.enforcer.Enforce(string(admin.Role), string(p))
	if err != nil {
		logging.Error().Err(err).Str("role", string(admin.Role)).Msg("Permission check failed")
	}
	if ok {
		return true
	}

	return slices.Contains(admin.Permissions, p)
}
