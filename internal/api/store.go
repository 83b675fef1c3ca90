// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"context"
	"time"

	"github.com/tomtom215/syncify/internal/activity"
	"github.com/tomtom215/syncify/internal/models"
)

// ProjectStore creates, lists and summarizes projects and their boards.
type ProjectStore interface {
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	CreateProject(ctx context.Context, p models.Project) (*models.Project, error)
	ListUserProjects(ctx context.Context, ownerID, email string) ([]models.Project, error)
	ListPublicProjects(ctx context.Context, limit int) ([]models.Project, error)
	ProjectSummary(ctx context.Context, projectID string) (*models.ProjectSummary, error)
	CreateBoard(ctx context.Context, b models.Board) (*models.Board, error)
	GetBoard(ctx context.Context, boardID string) (*models.Board, error)
}

// MemberStore reads and writes project grants.
type MemberStore interface {
	QueryRoleGrant(ctx context.Context, projectID, userEmail string) (*models.RoleGrant, error)
	ListMembers(ctx context.Context, projectID string) ([]models.RoleGrant, error)
	UpsertMember(ctx context.Context, grant models.RoleGrant) error
}

// InvitationStore records pending invitations.
type InvitationStore interface {
	PendingInvitation(ctx context.Context, projectID, email string) (*models.Invitation, error)
	CreateInvitation(ctx context.Context, inv models.Invitation) (*models.Invitation, error)
}

// TaskStore places and moves tasks on boards.
type TaskStore interface {
	FirstBoard(ctx context.Context, projectID string) (*models.Board, error)
	NextTaskPosition(ctx context.Context, boardID string) (int, error)
	CreateTask(ctx context.Context, t models.Task) (*models.Task, error)
	GetTask(ctx context.Context, taskID string) (*models.Task, error)
	MoveTask(ctx context.Context, taskID string, move models.TaskMove) (*models.Task, error)
	UpcomingTasks(ctx context.Context, email string, after time.Time, limit int) ([]models.Task, error)
}

// MessageStore persists chat history. The relay never writes to it.
type MessageStore interface {
	ListMessages(ctx context.Context, projectID string, limit int) ([]models.ChatMessage, error)
	CreateMessage(ctx context.Context, m models.ChatMessage) (*models.ChatMessage, error)
}

// ActivityReader lists a project's audit trail.
type ActivityReader interface {
	ListActivity(ctx context.Context, projectID string, limit int) ([]models.ActivityLog, error)
}

// Store is everything the REST handlers read or write. *supabase.Client
// satisfies it.
type Store interface {
	ProjectStore
	MemberStore
	InvitationStore
	TaskStore
	MessageStore
	ActivityReader
	activity.Store
}

// Pinger reports backend reachability for the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
