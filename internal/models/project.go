// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package models

import "time"

// Project is a row of the projects table.
type Project struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Content   string     `json:"content"`
	OwnerID   string     `json:"owner_id"`
	Public    bool       `json:"public"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Board is a task board belonging to a project.
type Board struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	Title     string     `json:"title"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Task is a card on a board. Assignee is an email address.
type Task struct {
	ID           string     `json:"id"`
	BoardID      string     `json:"board_id,omitempty"`
	ProjectID    string     `json:"project_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Assignee     *string    `json:"assignee"`
	Owner        string     `json:"owner,omitempty"`
	Status       string     `json:"status,omitempty"`
	DueDate      *time.Time `json:"due_date"`
	Position     int        `json:"position"`
	ReminderSent bool       `json:"reminder_sent"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// RoleGrant is a project_members row: at most one per (project, user).
// Role is kept as the raw stored string; authz parses and ranks it.
type RoleGrant struct {
	ProjectID string `json:"project_id"`
	UserEmail string `json:"user_email"`
	Role      string `json:"role"`
}

// Invitation is a project_invitations row. Token is only returned to the
// mailer, never in API responses.
type Invitation struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	InvitedByEmail string     `json:"invited_by_email"`
	InvitedEmail   string     `json:"invited_email"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	Token          string     `json:"token,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
}

// Invitation statuses.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

// ChatMessage is a persisted chat line. The relay never writes these.
type ChatMessage struct {
	ID        string     `json:"id,omitempty"`
	ProjectID string     `json:"project_id"`
	UserEmail string     `json:"user_email"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ActivityLog is an append-only audit row.
type ActivityLog struct {
	ID        int64      `json:"id,omitempty"`
	UserEmail string     `json:"user_email"`
	ProjectID *string    `json:"project_id"`
	Action    string     `json:"action"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// TaskMove is a partial relocation of a task. Nil fields are left as they are.
type TaskMove struct {
	BoardID  *string `json:"board_id,omitempty"`
	Position *int    `json:"position,omitempty"`
}

// ProjectSummary counts a project's content.
type ProjectSummary struct {
	Tasks         int            `json:"tasks"`
	TasksByStatus map[string]int `json:"tasks_by_status"`
	Messages      int            `json:"messages"`
	Files         int            `json:"files"`
}
