// Letterdesk - Physical Letter Fulfillment Admin Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/letterdesk

package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/letterdesk/internal/models"
)

// PasswordEncrypter turns a plaintext password into the form the login and
// password endpoints expect. The scheme belongs to the backend.
type PasswordEncrypter interface {
	// RequiresKey reports whether Encrypt needs the server-issued key from
	// GET admin/auth/encryption-key.
	RequiresKey() bool
	// Encrypt returns the wire form of password. key is empty when
	// RequiresKey is false.
	Encrypt(password, key string) (string, error)
}

// PassthroughEncrypter sends passwords unchanged with encrypted=false.
type PassthroughEncrypter struct{}

// RequiresKey implements PasswordEncrypter.
func (PassthroughEncrypter) RequiresKey() bool { return false }

// Encrypt implements PasswordEncrypter.
func (PassthroughEncrypter) Encrypt(password, _ string) (string, error) { return password, nil }

var _ PasswordEncrypter = PassthroughEncrypter{}

// LoginResult is the payload of POST admin/auth/login.
type LoginResult struct {
	Admin *models.Admin `json:"admin"`
	Token string        `json:"token"`
}

type loginBody struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Encrypted bool   `json:"encrypted"`
}

type passwordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	Encrypted       bool   `json:"encrypted"`
}

// EncryptionKey fetches the key used to encrypt passwords.
func (c *Client) EncryptionKey(ctx context.Context) (string, error) {
	data, _, err := fetch[struct {
		EncryptionKey string `json:"encryptionKey"`
	}](ctx, c, requestConfig{
		method:   http.MethodGet,
		path:     "admin/auth/encryption-key",
		endpoint: "auth/encryption-key",
	})
	if err != nil {
		return "", fmt.Errorf("encryption key: %w", err)
	}
	if data.EncryptionKey == "" {
		return "", fmt.Errorf("encryption key: empty key")
	}
	return data.EncryptionKey, nil
}

func (c *Client) encryptPassword(ctx context.Context, passwords ...string) ([]string, error) {
	var key string
	if c.encrypter.RequiresKey() {
		k, err := c.EncryptionKey(ctx)
		if err != nil {
			return nil, err
		}
		key = k
	}
	out := make([]string, len(passwords))
	for i, p := range passwords {
		enc, err := c.encrypter.Encrypt(p, key)
		if err != nil {
			return nil, fmt.Errorf("encrypt password: %w", err)
		}
		out[i] = enc
	}
	return out, nil
}

// Login exchanges credentials for a token. It does not touch the session.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	enc, err := c.encryptPassword(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	res, _, err := fetch[*LoginResult](ctx, c, requestConfig{
		method:   http.MethodPost,
		path:     "admin/auth/login",
		endpoint: "auth/login",
		body:     loginBody{Username: username, Password: enc[0], Encrypted: c.encrypter.RequiresKey()},
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if res == nil || res.Token == "" {
		return nil, fmt.Errorf("login: response carried no token")
	}
	return res, nil
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.call(ctx, requestConfig{
		method:   http.MethodPost,
		path:     "admin/auth/logout",
		endpoint: "auth/logout",
	}); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Me fetches the profile of the authenticated operator.
func (c *Client) Me(ctx context.Context) (*models.Admin, error) {
	a, err := getOne[models.Admin](ctx, c, "admin/auth/me", "auth/me")
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return a, nil
}

// ChangePassword changes the operator's own password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	enc, err := c.encryptPassword(ctx, current, next)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if _, err := c.call(ctx, requestConfig{
		method:   http.MethodPut,
		path:     "admin/auth/password",
		endpoint: "auth/password",
		body:     passwordBody{CurrentPassword: enc[0], NewPassword: enc[1], Encrypted: c.encrypter.RequiresKey()},
	}); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
