// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Authentication errors. Each maps to a distinct HTTP status.
var (
	// ErrMissingCredential indicates the Authorization header was absent.
	ErrMissingCredential = errors.New("missing authorization header")

	// ErrInvalidCredential indicates the provider rejected the token or
	// resolved no user for it.
	ErrInvalidCredential = errors.New("invalid or expired token")

	// ErrGuardFailure indicates the identity or role store could not be
	// consulted. Callers must answer 5xx and never proceed.
	ErrGuardFailure = errors.New("guard failure")

	// ErrTokenRejected is returned (wrapped) by IdentityProvider
	// implementations when the token itself is bad, as opposed to the
	// provider being unreachable.
	ErrTokenRejected = errors.New("token rejected by identity provider")
)

// User is what an IdentityProvider knows about a token's owner.
// Claims carries every attribute the provider returned, including id and email.
type User struct {
	ID     string
	Email  string
	Claims map[string]any
}

// IdentityProvider resolves a bearer token to a user.
//
// Implementations return an error wrapping ErrTokenRejected for invalid or
// expired tokens, (nil, nil) when no user is attached to the token, and any
// other error for transport or provider failures.
type IdentityProvider interface {
	ResolveUser(ctx context.Context, token string) (*User, error)
}

// CallerIdentity is the authenticated principal for one request.
type CallerIdentity struct {
	Email   string         `json:"email"`
	ID      string         `json:"id,omitempty"`
	IsAdmin bool           `json:"is_admin"`
	Claims  map[string]any `json:"claims,omitempty"`
}

// Authenticated reports whether the identity carries an email. An identity
// without one is never granted project access.
func (c *CallerIdentity) Authenticated() bool {
	return c != nil && c.Email != ""
}

// Guard authenticates bearer credentials against an IdentityProvider.
type Guard struct {
	provider    IdentityProvider
	adminEmails map[string]struct{}
}

// NewGuard creates a Guard. adminEmails is the platform admin allow-list,
// matched case-insensitively.
func NewGuard(provider IdentityProvider, adminEmails []string) *Guard {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Guard{provider: provider, adminEmails: admins}
}

// Authenticate resolves rawHeader (the Authorization header value) to a
// CallerIdentity.
//
// The "Bearer " prefix is stripped once if present; without it the whole
// header is used as the token.
func (g *Guard) Authenticate(ctx context.Context, rawHeader string) (*CallerIdentity, error) {
	if rawHeader == "" {
		return nil, ErrMissingCredential
	}
	token := strings.Replace(rawHeader, "Bearer ", "", 1)

	user, err := g.provider.ResolveUser(ctx, token)
	if err != nil {
		if errors.Is(err, ErrTokenRejected) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
		}
		return nil, fmt.Errorf("%w: resolve user: %w", ErrGuardFailure, err)
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	claims := make(map[string]any, len(user.Claims)+2)
	for k, v := range user.Claims {
		claims[k] = v
	}
	claims["email"] = user.Email
	if user.ID != "" {
		claims["id"] = user.ID
	}

	return &CallerIdentity{
		Email:   user.Email,
		ID:      user.ID,
		IsAdmin: g.IsAdmin(user.Email),
		Claims:  claims,
	}, nil
}

// IsAdmin reports whether email is on the admin allow-list.
func (g *Guard) IsAdmin(email string) bool {
	if email == "" {
		return false
	}
	_, ok := g.adminEmails[strings.ToLower(email)]
	return ok
}
