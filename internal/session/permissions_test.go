// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package session

import (
	"context"
	"testing"

	"github.com/tomtom215/letterdesk/internal/models"
)

func newAuthorizer(t *testing.T) *Authorizer {
	t.Helper()
	a, err := NewAuthorizer(nil)
	if err != nil {
		t.Fatalf("NewAuthorizer: %v", err)
	}
	return a
}

func TestAuthorizer_Roles(t *testing.T) {
	a := newAuthorizer(t)

	tests := []struct {
		name  string
		admin *models.Admin
		perm  models.Permission
		want  bool
	}{
		{"nil admin", nil, models.PermDashboardRead, false},
		{"super admin any", testAdmin(models.RoleSuperAdmin), models.PermAdminsDelete, true},
		{"admin letters delete", testAdmin(models.RoleAdmin), models.PermLettersDelete, true},
		{"admin users delete", testAdmin(models.RoleAdmin), models.PermUsersDelete, false},
		{"admin admins read", testAdmin(models.RoleAdmin), models.PermAdminsRead, false},
		{"manager dashboard", testAdmin(models.RoleManager), models.PermDashboardRead, true},
		{"manager letters write", testAdmin(models.RoleManager), models.PermLettersWrite, false},
		{"manager with grant", testAdmin(models.RoleManager, models.PermLettersWrite), models.PermLettersWrite, true},
		{"unknown role with grant", testAdmin("guest", models.PermUsersRead), models.PermUsersRead, true},
		{"unknown role without grant", testAdmin("guest"), models.PermUsersRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Allowed(tt.admin, tt.perm); got != tt.want {
				t.Errorf("Allowed(%v) = %v, want %v", tt.perm, got, tt.want)
			}
		})
	}
}

func TestAuthorizer_MatchesGrantTable(t *testing.T) {
	a := newAuthorizer(t)
	for role, perms := range models.RolePermissions {
		admin := testAdmin(role)
		granted := map[models.Permission]bool{}
		for _, p := range perms {
			granted[p] = true
		}
		for _, p := range models.AllPermissions {
			want := granted[p] || role == models.RoleSuperAdmin
			if got := a.Allowed(admin, p); got != want {
				t.Errorf("%s/%s = %v, want %v", role, p, got, want)
			}
		}
	}
}

func TestSession_HasPermission(t *testing.T) {
	ctx := context.Background()
	s := New(nil, newAuthorizer(t))

	if s.HasPermission(models.PermDashboardRead) {
		t.Error("unauthenticated session has permission")
	}

	_ = s.Establish(ctx, "token", testAdmin(models.RoleManager))
	if !s.HasPermission(models.PermDashboardRead) {
		t.Error("manager lacks dashboard.read")
	}
	if s.HasPermission(models.PermLettersDelete) {
		t.Error("manager has letters.delete")
	}
}
