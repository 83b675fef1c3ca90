// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package api serves the REST endpoints and the realtime websocket upgrade.
package api

import (
	"time"

	"github.com/tomtom215/syncify/internal/activity"
	"github.com/tomtom215/syncify/internal/config"
	"github.com/tomtom215/syncify/internal/mail"
	"github.com/tomtom215/syncify/internal/realtime"
)

// Page sizes for history endpoints.
const (
	messageHistoryLimit  = 200
	activityHistoryLimit = 200
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: liveness and readiness checks
//   - handlers_projects.go: me, projects, summary, members, invitations
//   - handlers_tasks.go: boards, task creation and moves, upcoming tasks
//   - handlers_chat.go: chat history and activity
//   - handlers_realtime.go: websocket upgrade and room snapshot
type Handler struct {
	store     Store
	pinger    Pinger
	activity  *activity.Recorder
	mailer    mail.Sender
	hub       *realtime.Hub
	config    *config.Config
	startTime time.Time
}

// HandlerDeps groups the collaborators of a Handler. Pinger, Mailer and Hub
// may be nil; the matching features degrade instead of failing.
type HandlerDeps struct {
	Store  Store
	Pinger Pinger
	Mailer mail.Sender
	Hub    *realtime.Hub
	Config *config.Config
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Handler{
		store:     deps.Store,
		pinger:    deps.Pinger,
		activity:  activity.NewRecorder(deps.Store),
		mailer:    deps.Mailer,
		hub:       deps.Hub,
		config:    cfg,
		startTime: time.Now(),
	}
}
