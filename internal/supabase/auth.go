// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/auth"
)

// ResolveUser implements auth.IdentityProvider against GoTrue's
// GET /auth/v1/user. Any 4xx answer (expired, malformed, revoked) is a token
// rejection; 5xx and transport failures are returned as-is so the guard
// reports them as internal failures.
func (c *Client) ResolveUser(ctx context.Context, token string) (*auth.User, error) {
	data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		apiKey: c.anonKey,
		bearer: token,
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode >= http.StatusBadRequest && se.StatusCode < http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w", auth.ErrTokenRejected, err)
		}
		return nil, err
	}

	var claims map[string]any
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	id, _ := claims["id"].(string)
	if id == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)
	return &auth.User{ID: id, Email: email, Claims: claims}, nil
}

var _ auth.IdentityProvider = (*Client)(nil)
