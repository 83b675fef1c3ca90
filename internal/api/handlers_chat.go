// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"net/http"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/authz"
	"github.com/tomtom215/syncify/internal/models"
	"github.com/tomtom215/syncify/internal/respond"
)

// PostMessageRequest is the body of POST /api/v1/projects/{projectId}/messages.
type PostMessageRequest struct {
	Content string `json:"content" validate:"required,notblank,max=4000"`
}

// ListMessages returns chat history, oldest first.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.ListMessages(r.Context(), authz.ProjectID(r.Context()), messageHistoryLimit)
	if err != nil {
		internalError(w, r, "Failed to load messages", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, messages)
}

// PostMessage persists one chat line. Delivery to connected peers is the
// client's job over the realtime channel.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.FromContext(ctx)
	projectID := authz.ProjectID(ctx)

	var req PostMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.store.CreateMessage(ctx, models.ChatMessage{
		ProjectID: projectID,
		UserEmail: identity.Email,
		Content:   req.Content,
	})
	if err != nil {
		internalError(w, r, "Failed to save message", err)
		return
	}

	h.activity.Record(ctx, identity.Email, projectID, "sent a chat message")
	respond.JSON(w, r, http.StatusCreated, msg)
}

// ListActivity returns the project's audit trail, newest first.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListActivity(r.Context(), authz.ProjectID(r.Context()), activityHistoryLimit)
	if err != nil {
		internalError(w, r, "Failed to load activity", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, entries)
}
