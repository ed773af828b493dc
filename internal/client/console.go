// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

/*
console.go - Dashboard, Letters, Users and Admins Endpoints

Plain pass-through calls for the console resources. Caching and
invalidation are layered on top by package console.
*/

//nolint:staticcheck // File documentation, not package doc
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/letterdesk/internal/models"
)

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T                `json:"items"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// LetterPatch is the body of PUT admin/letters/{id}.
type LetterPatch struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`
}

// UserPatch is the body of PUT admin/users/{id}.
type UserPatch struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// AdminCreate is the body of POST admin/admins.
type AdminCreate struct {
	Username    string              `json:"username"`
	Password    string              `json:"password"`
	Name        string              `json:"name"`
	Role        models.AdminRole    `json:"role,omitempty"`
	Permissions []models.Permission `json:"permissions,omitempty"`
	Department  string              `json:"department,omitempty"`
}

// AdminPatch is the body of PUT admin/admins/{id}.
type AdminPatch struct {
	Name        string              `json:"name,omitempty"`
	Role        models.AdminRole    `json:"role,omitempty"`
	Permissions []models.Permission `json:"permissions,omitempty"`
	Department  string              `json:"department,omitempty"`
	Status      string              `json:"status,omitempty"`
}

func listPage[T any](ctx context.Context, c *Client, path, endpoint string, query url.Values) (*Page[T], error) {
	items, pagination, err := fetch[[]T](ctx, c, requestConfig{
		method:   http.MethodGet,
		path:     path,
		endpoint: endpoint,
		query:    query,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Pagination: pagination}, nil
}

func getOne[T any](ctx context.Context, c *Client, path, endpoint string) (*T, error) {
	v, _, err := fetch[*T](ctx, c, requestConfig{method: http.MethodGet, path: path, endpoint: endpoint})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

func mutate[T any](ctx context.Context, c *Client, method, path, endpoint string, body interface{}) (*T, error) {
	v, _, err := fetch[*T](ctx, c, requestConfig{method: method, path: path, endpoint: endpoint, body: body})
	return v, err
}

// ===================================================================================================
// Console dashboard
// ===================================================================================================

// ConsoleDashboard fetches the console home page totals and recent activity.
func (c *Client) ConsoleDashboard(ctx context.Context) (*models.ConsoleDashboard, error) {
	d, err := getOne[models.ConsoleDashboard](ctx, c, "admin/dashboard", "dashboard")
	if err != nil {
		return nil, fmt.Errorf("get console dashboard: %w", err)
	}
	return d, nil
}

// ===================================================================================================
// Letters
// ===================================================================================================

// ListLetters returns one page of letters.
func (c *Client) ListLetters(ctx context.Context, q models.LetterQuery) (*Page[models.Letter], error) {
	query := listQuery(q.ListQuery)
	setIf(query, "type", q.Type)
	setIf(query, "category", q.Category)
	setIf(query, "physicalStatus", q.PhysicalStatus)

	page, err := listPage[models.Letter](ctx, c, "admin/letters", "letters", query)
	if err != nil {
		return nil, fmt.Errorf("list letters: %w", err)
	}
	return page, nil
}

// GetLetter fetches one letter.
func (c *Client) GetLetter(ctx context.Context, id string) (*models.Letter, error) {
	l, err := getOne[models.Letter](ctx, c, "admin/letters/"+escapeID(id), "letters/:id")
	if err != nil {
		return nil, fmt.Errorf("get letter %s: %w", id, err)
	}
	return l, nil
}

// UpdateLetter edits a letter's title, content or category.
func (c *Client) UpdateLetter(ctx context.Context, id string, patch LetterPatch) (*models.Letter, error) {
	l, err := mutate[models.Letter](ctx, c, http.MethodPut, "admin/letters/"+escapeID(id), "letters/:id", patch)
	if err != nil {
		return nil, fmt.Errorf("update letter %s: %w", id, err)
	}
	return l, nil
}

// UpdateLetterStatus changes a letter's publication status.
func (c *Client) UpdateLetterStatus(ctx context.Context, id, status, reason string) (*models.Letter, error) {
	body := struct {
		Status string `json:"status"`
		Reason string `json:"reason,omitempty"`
	}{status, reason}
	l, err := mutate[models.Letter](ctx, c, http.MethodPut, "admin/letters/"+escapeID(id)+"/status", "letters/:id/status", body)
	if err != nil {
		return nil, fmt.Errorf("update letter status %s: %w", id, err)
	}
	return l, nil
}

// DeleteLetter removes a letter.
func (c *Client) DeleteLetter(ctx context.Context, id string) error {
	if _, err := c.call(ctx, requestConfig{
		method:   http.MethodDelete,
		path:     "admin/letters/" + escapeID(id),
		endpoint: "letters/:id",
	}); err != nil {
		return fmt.Errorf("delete letter %s: %w", id, err)
	}
	return nil
}

// ===================================================================================================
// Users
// ===================================================================================================

// ListUsers returns one page of users.
func (c *Client) ListUsers(ctx context.Context, q models.ListQuery) (*Page[models.User], error) {
	page, err := listPage[models.User](ctx, c, "admin/users", "users", listQuery(q))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return page, nil
}

// SearchUsers runs a free-text user search.
func (c *Client) SearchUsers(ctx context.Context, text string, limit int) ([]models.User, error) {
	query := url.Values{"query": {text}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	page, err := listPage[models.User](ctx, c, "admin/users/search", "users/search", query)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return page.Items, nil
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := getOne[models.User](ctx, c, "admin/users/"+escapeID(id), "users/:id")
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// GetUserDetail fetches a user together with its activity summary.
func (c *Client) GetUserDetail(ctx context.Context, id string) (*models.UserDetail, error) {
	d, err := getOne[models.UserDetail](ctx, c, "admin/users/"+escapeID(id)+"/detail", "users/:id/detail")
	if err != nil {
		return nil, fmt.Errorf("get user detail %s: %w", id, err)
	}
	return d, nil
}

// GetUserStats fetches a user's activity summary.
func (c *Client) GetUserStats(ctx context.Context, id string) (*models.UserStats, error) {
	st, err := getOne[models.UserStats](ctx, c, "admin/users/"+escapeID(id)+"/stats", "users/:id/stats")
	if err != nil {
		return nil, fmt.Errorf("get user stats %s: %w", id, err)
	}
	return st, nil
}

// ListUserLetters returns one page of the letters a user wrote. Only page,
// limit and status are sent.
func (c *Client) ListUserLetters(ctx context.Context, id string, q models.ListQuery) (*Page[models.Letter], error) {
	page, err := listPage[models.Letter](ctx, c, "admin/users/"+escapeID(id)+"/letters", "users/:id/letters",
		listQuery(models.ListQuery{Page: q.Page, Limit: q.Limit, Status: q.Status}))
	if err != nil {
		return nil, fmt.Errorf("list letters of user %s: %w", id, err)
	}
	return page, nil
}

// UpdateUser edits a user's name or email.
func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	u, err := mutate[models.User](ctx, c, http.MethodPut, "admin/users/"+escapeID(id), "users/:id", patch)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return u, nil
}

// BanUser bans a user with a reason.
func (c *Client) BanUser(ctx context.Context, id, reason string) (*models.User, error) {
	body := struct {
		Reason string `json:"reason"`
	}{reason}
	u, err := mutate[models.User](ctx, c, http.MethodPost, "admin/users/"+escapeID(id)+"/ban", "users/:id/ban", body)
	if err != nil {
		return nil, fmt.Errorf("ban user %s: %w", id, err)
	}
	return u, nil
}

// UnbanUser lifts a ban.
func (c *Client) UnbanUser(ctx context.Context, id string) (*models.User, error) {
	u, err := mutate[models.User](ctx, c, http.MethodPost, "admin/users/"+escapeID(id)+"/unban", "users/:id/unban", nil)
	if err != nil {
		return nil, fmt.Errorf("unban user %s: %w", id, err)
	}
	return u, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if _, err := c.call(ctx, requestConfig{
		method:   http.MethodDelete,
		path:     "admin/users/" + escapeID(id),
		endpoint: "users/:id",
	}); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// ===================================================================================================
// Admins
// ===================================================================================================

// ListAdmins returns one page of operator accounts.
func (c *Client) ListAdmins(ctx context.Context, q models.AdminQuery) (*Page[models.Admin], error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	setIf(query, "search", q.Search)
	setIf(query, "role", string(q.Role))
	setIf(query, "status", q.Status)
	setIf(query, "department", q.Department)

	page, err := listPage[models.Admin](ctx, c, "admin/admins", "admins", query)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return page, nil
}

// GetAdmin fetches one operator account.
func (c *Client) GetAdmin(ctx context.Context, id string) (*models.Admin, error) {
	a, err := getOne[models.Admin](ctx, c, "admin/admins/"+escapeID(id), "admins/:id")
	if err != nil {
		return nil, fmt.Errorf("get admin %s: %w", id, err)
	}
	return a, nil
}

// CreateAdmin creates an operator account. The password is passed through
// the client's PasswordEncrypter.
func (c *Client) CreateAdmin(ctx context.Context, in AdminCreate) (*models.Admin, error) {
	encrypted, err := c.encryptPassword(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	in.Password = encrypted[0]

	a, err := mutate[models.Admin](ctx, c, http.MethodPost, "admin/admins", "admins", in)
	if err != nil {
		return nil, fmt.Errorf("create admin %s: %w", in.Username, err)
	}
	return a, nil
}

// UpdateAdmin edits an operator account.
func (c *Client) UpdateAdmin(ctx context.Context, id string, patch AdminPatch) (*models.Admin, error) {
	a, err := mutate[models.Admin](ctx, c, http.MethodPut, "admin/admins/"+escapeID(id), "admins/:id", patch)
	if err != nil {
		return nil, fmt.Errorf("update admin %s: %w", id, err)
	}
	return a, nil
}

// DeleteAdmin removes an operator account.
func (c *Client) DeleteAdmin(ctx context.Context, id string) error {
	if _, err := c.call(ctx, requestConfig{
		method:   http.MethodDelete,
		path:     "admin/admins/" + escapeID(id),
		endpoint: "admins/:id",
	}); err != nil {
		return fmt.Errorf("delete admin %s: %w", id, err)
	}
	return nil
}
