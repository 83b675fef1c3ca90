// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/authz"
	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/mail"
	"github.com/tomtom215/syncify/internal/models"
	"github.com/tomtom215/syncify/internal/respond"
)

const (
	defaultBoardTitle  = "Default Board"
	publicProjectLimit = 100
)

// CreateProjectRequest is the body of POST /api/v1/projects.
type CreateProjectRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Summary string `json:"summary" validate:"max=500"`
	Content string `json:"content"`
	Public  bool   `json:"public"`
}

// InviteRequest is the body of POST /api/v1/projects/{projectId}/invitations.
type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=viewer member manager admin"`
}

func (req *InviteRequest) normalize() {
	req.Email = normalizeEmail(req.Email)
	req.Role = strings.TrimSpace(req.Role)
}

// Me returns the authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, auth.FromContext(r.Context()))
}

// CreateProject creates a project, grants the creator admin on it and adds
// a default board.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())

	var req CreateProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.store.CreateProject(r.Context(), models.Project{
		ID:      uuid.New().String(),
		Title:   req.Title,
		Summary: req.Summary,
		Content: req.Content,
		OwnerID: identity.ID,
		Public:  req.Public,
	})
	if err != nil {
		internalError(w, r, "Failed to create project", err)
		return
	}

	if err := h.store.UpsertMember(r.Context(), models.RoleGrant{
		ProjectID: project.ID,
		UserEmail: identity.Email,
		Role:      string(authz.RoleAdmin),
	}); err != nil {
		internalError(w, r, "Failed to grant project owner", err)
		return
	}

	// Task creation recreates a missing board, so this is not fatal.
	if _, err := h.store.CreateBoard(r.Context(), models.Board{
		ID:        uuid.New().String(),
		ProjectID: project.ID,
		Title:     defaultBoardTitle,
	}); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("project_id", project.ID).Msg("Failed to create default board")
	}

	h.activity.Record(r.Context(), identity.Email, project.ID, "created project "+project.Title)
	respond.JSON(w, r, http.StatusCreated, project)
}

// ListProjects returns the projects the caller created or holds a grant
// on, newest first.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	projects, err := h.store.ListUserProjects(r.Context(), identity.ID, identity.Email)
	if err != nil {
		internalError(w, r, "Failed to list projects", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, projects)
}

// ListPublicProjects needs no credential.
func (h *Handler) ListPublicProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListPublicProjects(r.Context(), publicProjectLimit)
	if err != nil {
		internalError(w, r, "Failed to list public projects", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, projects)
}

// ProjectSummary returns content counts for the project.
func (h *Handler) ProjectSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.store.ProjectSummary(r.Context(), authz.ProjectID(r.Context()))
	if err != nil {
		internalError(w, r, "Failed to summarize project", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, sum)
}

// ListMembers returns every grant on the project.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.store.ListMembers(r.Context(), authz.ProjectID(r.Context()))
	if err != nil {
		internalError(w, r, "Failed to list members", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, members)
}

// InviteMember records a pending invitation and emails the invitee. The
// grant itself is created when the invitation is accepted.
func (h *Handler) InviteMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.FromContext(ctx)
	projectID := authz.ProjectID(ctx)

	var req InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	email := req.Email
	role := req.Role
	if role == "" {
		role = string(authz.RoleMember)
	}

	project, err := h.store.GetProject(ctx, projectID)
	if err != nil {
		internalError(w, r, "Failed to load project", err)
		return
	}
	if project == nil {
		respond.Error(w, r, http.StatusNotFound, "NOT_FOUND", "Project not found", nil)
		return
	}

	existing, err := h.store.QueryRoleGrant(ctx, projectID, email)
	if err != nil {
		internalError(w, r, "Failed to check membership", err)
		return
	}
	if existing != nil {
		respond.Error(w, r, http.StatusBadRequest, "ALREADY_MEMBER", "User is already a member of this project", nil)
		return
	}

	pending, err := h.store.PendingInvitation(ctx, projectID, email)
	if err != nil {
		internalError(w, r, "Failed to check invitations", err)
		return
	}
	if pending != nil {
		respond.Error(w, r, http.StatusBadRequest, "ALREADY_INVITED", "An invitation has already been sent to this email", nil)
		return
	}

	token, err := newInvitationToken()
	if err != nil {
		internalError(w, r, "Failed to create invitation", err)
		return
	}

	inv, err := h.store.CreateInvitation(ctx, models.Invitation{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		InvitedByEmail: identity.Email,
		InvitedEmail:   email,
		Role:           role,
		Status:         models.InvitationPending,
		Token:          token,
		ExpiresAt:      time.Now().UTC().Add(mail.InvitationExpiry),
	})
	if err != nil {
		internalError(w, r, "Failed to create invitation", err)
		return
	}

	h.sendInvitation(r, mail.Invitation{
		InvitedEmail: email,
		ProjectTitle: project.Title,
		InviterEmail: identity.Email,
		InviterName:  displayName(identity),
		Role:         role,
		Token:        token,
	})

	h.activity.Record(ctx, identity.Email, projectID, fmt.Sprintf("invited %s as %s", email, role))

	inv.Token = ""
	respond.JSON(w, r, http.StatusCreated, inv)
}

// sendInvitation is best-effort: the invitation row already exists.
func (h *Handler) sendInvitation(r *http.Request, inv mail.Invitation) {
	log := logging.Ctx(r.Context())
	if h.mailer == nil {
		log.Warn().Str("invited", logging.SanitizeEmail(inv.InvitedEmail)).Msg("No mailer configured, invitation email skipped")
		return
	}
	msg, err := mail.BuildInvitation(h.config.FrontendURL, inv)
	if err == nil {
		err = h.mailer.Send(r.Context(), msg)
	}
	if err != nil {
		log.Warn().Err(err).Str("invited", logging.SanitizeEmail(inv.InvitedEmail)).Msg("Invitation email failed")
	}
}

func newInvitationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// displayName reads the provider's user_metadata full_name or name claim.
func displayName(identity *auth.CallerIdentity) string {
	meta, ok := identity.Claims["user_metadata"].(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"full_name", "name"} {
		if v, ok := meta[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
