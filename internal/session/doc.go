// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

// Package session holds the authenticated operator's session.
//
// A Session is created once at startup and injected into the API client and
// the HTTP surface. It owns the bearer token, the current admin profile and
// the permission check. There is no package-level session.
//
// # Unauthorized Handling
//
// When the remote API answers 401, the client calls HandleUnauthorized. The
// session clears its in-memory state, removes the persisted copy and then
// invokes every callback registered with OnUnauthorized:
//
//	sess.OnUnauthorized(func() {
//	    logging.Warn().Msg("Session expired, login required")
//	})
//
// Callbacks run at most once per established session. The client passes the
// token the rejected request carried; a 401 for a token that has since been
// replaced by a new login is ignored.
//
// # Persistence
//
// The session is persisted under the "admin-auth" key of a Store. BadgerStore
// keeps it in a BadgerDB directory so that a restarted console resumes the
// operator's session; an empty path opens an in-memory database.
//
// # Permissions
//
// HasPermission evaluates, in order: the super_admin role (allowed
// everything), the role's grants from models.RolePermissions (loaded into a
// Casbin enforcer), then the admin's individually granted permissions.
package session
