// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// supabaseAudience is the aud claim on tokens issued to signed-in users.
const supabaseAudience = "authenticated"

// JWTProvider verifies Supabase access tokens locally with the project's
// HS256 secret instead of calling the identity provider. It implements
// IdentityProvider for AUTH_MODE=jwt.
type JWTProvider struct {
	secret []byte
	leeway time.Duration
}

// NewJWTProvider creates a JWTProvider. The secret must be non-empty.
func NewJWTProvider(secret string) (*JWTProvider, error) {
	if secret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required but was empty")
	}
	return &JWTProvider{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

// ResolveUser validates the token signature, expiry and audience.
// Tokens without a subject (the anon key, service keys) resolve to no user.
func (p *JWTProvider) ResolveUser(_ context.Context, token string) (*User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(p.leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenRejected, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenRejected
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)

	return &User{ID: sub, Email: email, Claims: map[string]any(claims)}, nil
}
