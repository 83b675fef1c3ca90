// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package activity appends project audit entries. Recording is best-effort:
// failures are logged and never reach the caller.
package activity

import (
	"context"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/models"
)

// Store persists activity rows.
type Store interface {
	InsertActivity(ctx context.Context, entry models.ActivityLog) error
}

// Recorder writes activity entries to a Store.
type Recorder struct {
	store Store
}

// NewRecorder creates a Recorder.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends {userEmail, projectID, action}. An empty projectID is
// stored as null.
func (r *Recorder) Record(ctx context.Context, userEmail, projectID, action string) {
	entry := models.ActivityLog{UserEmail: userEmail, Action: action}
	if projectID != "" {
		entry.ProjectID = &projectID
	}

	if err := r.store.InsertActivity(ctx, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("project_id", projectID).
			Str("action", logging.SanitizeValue(action)).
			Msg("Failed to record activity")
	}
}
