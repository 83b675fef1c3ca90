// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/metrics"
	"github.com/tomtom215/syncify/internal/respond"
)

type contextKey string

// IdentityContextKey is the context key for the resolved CallerIdentity.
const IdentityContextKey contextKey = "caller_identity"

// Middleware enforces authentication on HTTP routes.
type Middleware struct {
	guard *Guard
}

// NewMiddleware wraps a Guard.
func NewMiddleware(guard *Guard) *Middleware {
	return &Middleware{guard: guard}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// CallerIdentity in the request context for downstream handlers.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.guard.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			handleAuthError(w, r, err)
			return
		}

		metrics.RecordGuardDecision("authenticate", "allowed")
		logging.Ctx(r.Context()).Debug().
			Str("email", logging.SanitizeEmail(identity.Email)).
			Bool("is_admin", identity.IsAdmin).
			Msg("Caller authenticated")

		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingCredential):
		metrics.RecordGuardDecision("authenticate", "missing_credential")
		respond.Error(w, r, http.StatusUnauthorized, "MISSING_CREDENTIAL", "Missing authorization header", nil)
	case errors.Is(err, ErrInvalidCredential):
		metrics.RecordGuardDecision("authenticate", "invalid_credential")
		respond.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIAL", "Invalid or expired token", nil)
	default:
		metrics.RecordGuardDecision("authenticate", "guard_failure")
		respond.Error(w, r, http.StatusInternalServerError, "GUARD_FAILURE", "Auth middleware error", err)
	}
}

// FromContext returns the CallerIdentity stored by RequireAuth, or nil.
func FromContext(ctx context.Context) *CallerIdentity {
	identity, _ := ctx.Value(IdentityContextKey).(*CallerIdentity)
	return identity
}

// ContextWithIdentity stores identity in ctx.
func ContextWithIdentity(ctx context.Context, identity *CallerIdentity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}
