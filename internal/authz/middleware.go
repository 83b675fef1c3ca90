// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/metrics"
	"github.com/tomtom215/syncify/internal/respond"
)

type contextKey string

const (
	projectRoleKey contextKey = "project_role"
	projectIDKey   contextKey = "project_id"
)

// Middleware gates routes by project role and by platform policy.
type Middleware struct {
	guard    *Guard
	enforcer *Enforcer
}

// NewMiddleware creates authorization middleware. enforcer may be nil when
// no platform-admin routes are mounted.
func NewMiddleware(guard *Guard, enforcer *Enforcer) *Middleware {
	return &Middleware{guard: guard, enforcer: enforcer}
}

// RequireProjectRole resolves the project id named param and requires the
// authenticated caller to hold at least minRole on it. The resolved role and
// project id are stored in the request context.
//
// Must run after auth.Middleware.RequireAuth.
func (m *Middleware) RequireProjectRole(param string, minRole Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.FromContext(r.Context())
			if identity == nil {
				respond.Error(w, r, http.StatusUnauthorized, "MISSING_CREDENTIAL", "Authentication required", nil)
				return
			}

			projectID := ResolveProjectID(r, param)
			role, err := m.guard.Authorize(r.Context(), identity.Email, projectID, minRole)
			if err != nil {
				handleAuthzError(w, r, err)
				return
			}

			metrics.RecordGuardDecision("authorize", "allowed")
			ctx := context.WithValue(r.Context(), projectRoleKey, role)
			ctx = context.WithValue(ctx, projectIDKey, projectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePlatformPolicy checks the caller's email against the Casbin policy,
// using the request path as object and the method's action. Used for
// operator routes outside any project.
func (m *Middleware) RequirePlatformPolicy() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.FromContext(r.Context())
			if !identity.Authenticated() {
				respond.Error(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: no authentication context", nil)
				return
			}
			if m.enforcer == nil {
				respond.Error(w, r, http.StatusInternalServerError, "GUARD_FAILURE", "Authorization unavailable", errors.New("no policy enforcer configured"))
				return
			}

			allowed, err := m.enforcer.Enforce(normalizeSubject(identity.Email), r.URL.Path, MethodToAction(r.Method))
			if err != nil {
				respond.Error(w, r, http.StatusInternalServerError, "GUARD_FAILURE", "Internal server error", err)
				return
			}
			if !allowed {
				metrics.RecordGuardDecision("platform", "denied")
				respond.Error(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: insufficient permissions", nil)
				return
			}
			metrics.RecordGuardDecision("platform", "allowed")
			next.ServeHTTP(w, r)
		})
	}
}

func handleAuthzError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingProjectID):
		metrics.RecordGuardDecision("authorize", "missing_project_id")
		respond.Error(w, r, http.StatusBadRequest, "MISSING_PROJECT_ID", "projectId required", nil)
	case errors.Is(err, ErrNotAMember):
		metrics.RecordGuardDecision("authorize", "not_a_member")
		respond.Error(w, r, http.StatusForbidden, "NOT_A_MEMBER", "Not a member of project", nil)
	case errors.Is(err, ErrInsufficientRole):
		metrics.RecordGuardDecision("authorize", "insufficient_role")
		respond.Error(w, r, http.StatusForbidden, "INSUFFICIENT_ROLE", "Insufficient role", nil)
	default:
		metrics.RecordGuardDecision("authorize", "guard_failure")
		logging.Ctx(r.Context()).Error().Err(err).Msg("Role lookup failed")
		respond.Error(w, r, http.StatusInternalServerError, "GUARD_FAILURE", "Authorization check failed", nil)
	}
}

// ProjectRole returns the role resolved by RequireProjectRole.
func ProjectRole(ctx context.Context) Role {
	role, _ := ctx.Value(projectRoleKey).(Role)
	return role
}

// ProjectID returns the project id resolved by RequireProjectRole.
func ProjectID(ctx context.Context) string {
	id, _ := ctx.Value(projectIDKey).(string)
	return id
}
