// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/authz"
	"github.com/tomtom215/syncify/internal/models"
	"github.com/tomtom215/syncify/internal/respond"
)

const (
	taskStatusTodo    = "todo"
	upcomingTaskLimit = 50
)

// CreateBoardRequest is the body of POST /api/v1/projects/{projectId}/boards.
type CreateBoardRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
}

// MoveTaskRequest is the body of PUT
// /api/v1/projects/{projectId}/tasks/{taskId}/move. At least one field is set.
type MoveTaskRequest struct {
	BoardID  *string `json:"board_id" validate:"required_without=Position,omitempty,notblank"`
	Position *int    `json:"position" validate:"omitempty,gte=0"`
}

// CreateTaskRequest is the body of POST /api/v1/projects/{projectId}/tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,notblank,max=300"`
	Description string     `json:"description"`
	Assignee    string     `json:"assignee" validate:"omitempty,email"`
	DueDate     *time.Time `json:"due_date"`
}

func (req *CreateTaskRequest) normalize() {
	req.Assignee = normalizeEmail(req.Assignee)
}

// CreateTask appends a task to the project's first board, creating a
// default board when the project has none. An assignee must already hold a
// grant on the project.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.FromContext(ctx)
	projectID := authz.ProjectID(ctx)

	var req CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var assignee *string
	if a := req.Assignee; a != "" {
		grant, err := h.store.QueryRoleGrant(ctx, projectID, a)
		if err != nil {
			internalError(w, r, "Failed to check assignee", err)
			return
		}
		if grant == nil {
			respond.Error(w, r, http.StatusBadRequest, "ASSIGNEE_NOT_MEMBER",
				"Assignee "+a+" is not a member of this project. Please invite them first.", nil)
			return
		}
		assignee = &a
	}

	board, err := h.store.FirstBoard(ctx, projectID)
	if err != nil {
		internalError(w, r, "Failed to load board", err)
		return
	}
	if board == nil {
		board, err = h.store.CreateBoard(ctx, models.Board{
			ID:        uuid.New().String(),
			ProjectID: projectID,
			Title:     defaultBoardTitle,
		})
		if err != nil {
			internalError(w, r, "Failed to create board", err)
			return
		}
		h.activity.Record(ctx, identity.Email, projectID, "created default board")
	}

	position, err := h.store.NextTaskPosition(ctx, board.ID)
	if err != nil {
		internalError(w, r, "Failed to compute task position", err)
		return
	}

	task, err := h.store.CreateTask(ctx, models.Task{
		ID:          uuid.New().String(),
		BoardID:     board.ID,
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Assignee:    assignee,
		Owner:       identity.Email,
		Status:      taskStatusTodo,
		DueDate:     req.DueDate,
		Position:    position,
	})
	if err != nil {
		internalError(w, r, "Failed to create task", err)
		return
	}

	h.activity.Record(ctx, identity.Email, projectID, "created task "+task.Title)
	respond.JSON(w, r, http.StatusCreated, task)
}

// CreateBoard adds a board to the project.
func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.FromContext(ctx)
	projectID := authz.ProjectID(ctx)

	var req CreateBoardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	board, err := h.store.CreateBoard(ctx, models.Board{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     req.Title,
	})
	if err != nil {
		internalError(w, r, "Failed to create board", err)
		return
	}

	h.activity.Record(ctx, identity.Email, projectID, "created board "+board.Title)
	respond.JSON(w, r, http.StatusCreated, board)
}

// MoveTask changes a task's board, position or both. The task and the
// target board must belong to the project in the path.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.FromContext(ctx)
	projectID := authz.ProjectID(ctx)
	taskID := chi.URLParam(r, "taskId")

	var req MoveTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.store.GetTask(ctx, taskID)
	if err != nil {
		internalError(w, r, "Failed to load task", err)
		return
	}
	if task == nil || task.ProjectID != projectID {
		respond.Error(w, r, http.StatusNotFound, "NOT_FOUND", "Task not found", nil)
		return
	}

	if req.BoardID != nil {
		board, err := h.store.GetBoard(ctx, *req.BoardID)
		if err != nil {
			internalError(w, r, "Failed to load board", err)
			return
		}
		if board == nil || board.ProjectID != projectID {
			respond.Error(w, r, http.StatusNotFound, "NOT_FOUND", "Board not found", nil)
			return
		}
	}

	moved, err := h.store.MoveTask(ctx, taskID, models.TaskMove{BoardID: req.BoardID, Position: req.Position})
	if err != nil {
		internalError(w, r, "Failed to move task", err)
		return
	}

	h.activity.Record(ctx, identity.Email, projectID, "moved task "+taskID)
	respond.JSON(w, r, http.StatusOK, moved)
}

// UpcomingTasks lists the caller's tasks, assigned or owned, that are not
// yet due.
func (h *Handler) UpcomingTasks(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromContext(r.Context())
	tasks, err := h.store.UpcomingTasks(r.Context(), identity.Email, time.Now().UTC(), upcomingTaskLimit)
	if err != nil {
		internalError(w, r, "Failed to load upcoming tasks", err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}
