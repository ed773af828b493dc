// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/letterdesk/internal/console"
	"github.com/tomtom215/letterdesk/internal/logging"
	"github.com/tomtom215/letterdesk/internal/models"
)

// sessionInfo describes the signed-in operator.
type sessionInfo struct {
	Admin       *models.Admin       `json:"admin"`
	Permissions []models.Permission `json:"permissions"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
}

func (h *Handler) sessionInfo(admin *models.Admin) sessionInfo {
	info := sessionInfo{Admin: admin, Permissions: []models.Permission{}}
	for _, p := range models.AllPermissions {
		if h.session.HasPermission(p) {
			info.Permissions = append(info.Permissions, p)
		}
	}
	if exp := h.session.ExpiresAt(); !exp.IsZero() {
		info.ExpiresAt = &exp
	}
	return info
}

// Login signs an operator in.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds console.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	admin, err := h.console.Login(r.Context(), creds)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Str("username", sanitizeLogValue(creds.Username)).Msg("Console sign-in rejected")
		respondErr(w, r, err)
		return
	}
	respondData(w, r, h.sessionInfo(admin))
}

// Logout signs the operator out. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.console.Logout(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, map[string]bool{"signedOut": true})
}

// Me returns the signed-in operator and their effective permissions.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	admin, err := h.console.Me(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, h.sessionInfo(admin))
}

// ChangePassword changes the signed-in operator's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var body console.PasswordChange
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.console.ChangePassword(r.Context(), body); err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, map[string]bool{"changed": true})
}
