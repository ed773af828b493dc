// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/letterdesk/internal/client"
	"github.com/tomtom215/letterdesk/internal/console"
	"github.com/tomtom215/letterdesk/internal/models"
)

// ========================
// Letters
// ========================

// Letters lists letters.
func (h *Handler) Letters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.console.ListLetters(r.Context(), models.LetterQuery{
		ListQuery:      listQuery(r),
		Type:           q.Get("type"),
		Category:       q.Get("category"),
		PhysicalStatus: q.Get("physicalStatus"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, r, page.Items, len(page.Items), page.Pagination)
}

// Letter returns one letter.
func (h *Handler) Letter(w http.ResponseWriter, r *http.Request) {
	l, err := h.console.GetLetter(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, l)
}

// UpdateLetter edits a letter's content.
func (h *Handler) UpdateLetter(w http.ResponseWriter, r *http.Request) {
	var patch client.LetterPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	l, err := h.console.UpdateLetter(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, l)
}

// UpdateLetterStatus moderates a letter.
func (h *Handler) UpdateLetterStatus(w http.ResponseWriter, r *http.Request) {
	var change console.LetterStatusChange
	if !decodeJSON(w, r, &change) {
		return
	}
	l, err := h.console.UpdateLetterStatus(r.Context(), chi.URLParam(r, "id"), change)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, l)
}

// DeleteLetter deletes a letter.
func (h *Handler) DeleteLetter(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.console.DeleteLetter(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, map[string]string{"deleted": id})
}

// ========================
// Users
// ========================

// Users lists users.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	page, err := h.console.ListUsers(r.Context(), listQuery(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, r, page.Items, len(page.Items), page.Pagination)
}

// SearchUsers finds users by name or email. An empty q returns no users.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	limit := clamp(getIntParam(r, "limit", console.DefaultSearchLimit), 1, 100)
	users, err := h.console.SearchUsers(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, r, users, len(users), nil)
}

// User returns one user.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	u, err := h.console.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, u)
}

// UserDetail returns a user with its activity summary.
func (h *Handler) UserDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.console.GetUserDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, d)
}

// UserStats returns a user's activity summary.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.console.GetUserStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, st)
}

// UserLetters lists the letters a user wrote. page, limit and status apply.
func (h *Handler) UserLetters(w http.ResponseWriter, r *http.Request) {
	page, err := h.console.ListUserLetters(r.Context(), chi.URLParam(r, "id"), listQuery(r))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, r, page.Items, len(page.Items), page.Pagination)
}

// UpdateUser edits a user's profile.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch client.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	u, err := h.console.UpdateUser(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, u)
}

// BanUser bans a user.
func (h *Handler) BanUser(w http.ResponseWriter, r *http.Request) {
	var req console.BanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.console.BanUser(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, u)
}

// UnbanUser lifts a ban.
func (h *Handler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.console.UnbanUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, u)
}

// DeleteUser deletes a user.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.console.DeleteUser(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, map[string]string{"deleted": id})
}

// ========================
// Admins
// ========================

// Admins lists operator accounts.
func (h *Handler) Admins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq := listQuery(r)
	page, err := h.console.ListAdmins(r.Context(), models.AdminQuery{
		Page:       lq.Page,
		Limit:      lq.Limit,
		Search:     lq.Search,
		Role:       models.AdminRole(q.Get("role")),
		Status:     lq.Status,
		Department: q.Get("department"),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondList(w, r, page.Items, len(page.Items), page.Pagination)
}

// Admin returns one operator account.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	a, err := h.console.GetAdmin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, a)
}

// CreateAdmin creates an operator account.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var in console.NewAdmin
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.console.CreateAdmin(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, &APIResponse{Success: true, Data: a})
}

// UpdateAdmin edits an operator account.
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var patch client.AdminPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	a, err := h.console.UpdateAdmin(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, a)
}

// DeleteAdmin deletes an operator account other than the caller's.
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.console.DeleteAdmin(r.Context(), id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondData(w, r, map[string]string{"deleted": id})
}
