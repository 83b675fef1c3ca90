// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/models"
)

// Authorization errors. Store failures surface as auth.ErrGuardFailure.
var (
	// ErrMissingProjectID indicates no project id in path, body or query.
	ErrMissingProjectID = errors.New("projectId required")

	// ErrNotAMember indicates the caller holds no grant on the project.
	ErrNotAMember = errors.New("not a member of project")

	// ErrInsufficientRole indicates the caller's grant ranks below the minimum.
	ErrInsufficientRole = errors.New("insufficient role")
)

// RoleStore looks up the single role grant for (projectID, userEmail).
// A nil grant with a nil error means no grant exists.
type RoleStore interface {
	QueryRoleGrant(ctx context.Context, projectID, userEmail string) (*models.RoleGrant, error)
}

// Guard authorizes project-scoped actions.
type Guard struct {
	store RoleStore
}

// NewGuard creates a Guard backed by store.
func NewGuard(store RoleStore) *Guard {
	return &Guard{store: store}
}

// Authorize returns the caller's role on projectID if it ranks at least
// minRole. It performs one read and never writes.
func (g *Guard) Authorize(ctx context.Context, callerEmail, projectID string, minRole Role) (Role, error) {
	if projectID == "" {
		return "", ErrMissingProjectID
	}
	if callerEmail == "" {
		// An identity without an email is never authenticated for a project.
		return "", ErrNotAMember
	}

	grant, err := g.store.QueryRoleGrant(ctx, projectID, callerEmail)
	if err != nil {
		return "", fmt.Errorf("%w: query role grant: %w", auth.ErrGuardFailure, err)
	}
	if grant == nil {
		return "", ErrNotAMember
	}

	role, err := ParseRole(grant.Role)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Str("project_id", logging.SanitizeValue(projectID)).
			Str("role", logging.SanitizeValue(grant.Role)).
			Msg("Role grant holds an unknown role, denying")
		return "", fmt.Errorf("%w: %w", ErrInsufficientRole, err)
	}
	if !role.AtLeast(minRole) {
		return "", ErrInsufficientRole
	}
	return role, nil
}
