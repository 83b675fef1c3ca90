// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/models"
)

// PostgREST table names.
const (
	tableProjects    = "projects"
	tableMembers     = "project_members"
	tableBoards      = "boards"
	tableTasks       = "tasks"
	tableInvitations = "project_invitations"
	tableMessages    = "messages"
	tableActivity    = "activity_logs"
	tableFiles       = "files"
)

func eq(v string) string { return "eq." + v }

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoted wraps a value for use inside a PostgREST or=(...) group, where
// commas and parentheses are reserved.
func quoted(v string) string {
	return `"` + quoteEscaper.Replace(v) + `"`
}

func (c *Client) selectRows(ctx context.Context, table string, q url.Values, out interface{}) error {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/rest/v1/" + table, query: q})
	if err != nil {
		return fmt.Errorf("select %s: %w", table, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	return nil
}

// insertRow inserts row and decodes the single returned representation
// into out when out is non-nil.
func (c *Client) insertRow(ctx context.Context, table string, q url.Values, prefer string, row, out interface{}) error {
	data, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/rest/v1/" + table,
		query:  q,
		body:   []interface{}{row},
		prefer: prefer,
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	if out == nil {
		return nil
	}
	return decodeSingle(table, data, out)
}

func decodeSingle(table string, data []byte, out interface{}) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("decode %s: %w", table, err)
	}
	if len(rows) != 1 {
		return fmt.Errorf("%s: expected 1 row, got %d", table, len(rows))
	}
	return json.Unmarshal(rows[0], out)
}

// QueryRoleGrant implements authz.RoleStore. Zero rows is (nil, nil); more
// than one row violates the single-grant invariant and is an error.
func (c *Client) QueryRoleGrant(ctx context.Context, projectID, userEmail string) (*models.RoleGrant, error) {
	q := url.Values{}
	q.Set("select", "project_id,user_email,role")
	q.Set("project_id", eq(projectID))
	q.Set("user_email", eq(userEmail))
	q.Set("limit", "2")

	var rows []models.RoleGrant
	if err := c.selectRows(ctx, tableMembers, q, &rows); err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, fmt.Errorf("project %s has %d grants for one user", projectID, len(rows))
	}
}

// ListMembers returns every grant on a project.
func (c *Client) ListMembers(ctx context.Context, projectID string) ([]models.RoleGrant, error) {
	q := url.Values{}
	q.Set("select", "project_id,user_email,role")
	q.Set("project_id", eq(projectID))
	q.Set("order", "user_email.asc")

	rows := []models.RoleGrant{}
	if err := c.selectRows(ctx, tableMembers, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertMember creates or overwrites the grant for (project, user).
func (c *Client) UpsertMember(ctx context.Context, grant models.RoleGrant) error {
	q := url.Values{}
	q.Set("on_conflict", "project_id,user_email")
	return c.insertRow(ctx, tableMembers, q, "resolution=merge-duplicates,return=minimal", grant, nil)
}

// GetProject returns a project, or nil when it does not exist.
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	q := url.Values{}
	q.Set("id", eq(projectID))
	q.Set("limit", "1")

	var rows []models.Project
	if err := c.selectRows(ctx, tableProjects, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateProject inserts a project and returns the stored row.
func (c *Client) CreateProject(ctx context.Context, p models.Project) (*models.Project, error) {
	var out models.Project
	if err := c.insertRow(ctx, tableProjects, nil, "return=representation", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserProjects returns the projects ownerID created plus those email
// holds a grant on, newest first. Each project appears once.
func (c *Client) ListUserProjects(ctx context.Context, ownerID, email string) ([]models.Project, error) {
	mq := url.Values{}
	mq.Set("select", "project_id")
	mq.Set("user_email", eq(email))

	var grants []struct {
		ProjectID string `json:"project_id"`
	}
	if err := c.selectRows(ctx, tableMembers, mq, &grants); err != nil {
		return nil, err
	}

	filters := []string{"owner_id.eq." + quoted(ownerID)}
	if len(grants) > 0 {
		ids := make([]string, len(grants))
		for i, g := range grants {
			ids[i] = quoted(g.ProjectID)
		}
		filters = append(filters, "id.in.("+strings.Join(ids, ",")+")")
	}

	q := url.Values{}
	q.Set("or", "("+strings.Join(filters, ",")+")")
	q.Set("order", "created_at.desc")

	rows := []models.Project{}
	if err := c.selectRows(ctx, tableProjects, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPublicProjects returns up to limit public projects, newest first.
func (c *Client) ListPublicProjects(ctx context.Context, limit int) ([]models.Project, error) {
	q := url.Values{}
	q.Set("public", "is.true")
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))

	rows := []models.Project{}
	if err := c.selectRows(ctx, tableProjects, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ProjectSummary counts a project's tasks, messages and files. A missing
// files table counts as zero files.
func (c *Client) ProjectSummary(ctx context.Context, projectID string) (*models.ProjectSummary, error) {
	q := url.Values{}
	q.Set("select", "id,status")
	q.Set("project_id", eq(projectID))

	var tasks []struct {
		Status string `json:"status"`
	}
	if err := c.selectRows(ctx, tableTasks, q, &tasks); err != nil {
		return nil, err
	}
	sum := &models.ProjectSummary{Tasks: len(tasks), TasksByStatus: make(map[string]int)}
	for _, t := range tasks {
		sum.TasksByStatus[t.Status]++
	}

	var err error
	if sum.Messages, err = c.countRows(ctx, tableMessages, projectID); err != nil {
		return nil, err
	}
	sum.Files, err = c.countRows(ctx, tableFiles, projectID)
	if err != nil && !IsStatus(err, http.StatusNotFound) {
		return nil, err
	}
	return sum, nil
}

func (c *Client) countRows(ctx context.Context, table, projectID string) (int, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("project_id", eq(projectID))

	var rows []json.RawMessage
	if err := c.selectRows(ctx, table, q, &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// CreateBoard inserts a board and returns the stored row.
func (c *Client) CreateBoard(ctx context.Context, b models.Board) (*models.Board, error) {
	var out models.Board
	if err := c.insertRow(ctx, tableBoards, nil, "return=representation", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBoard returns a board, or nil when it does not exist.
func (c *Client) GetBoard(ctx context.Context, boardID string) (*models.Board, error) {
	q := url.Values{}
	q.Set("id", eq(boardID))
	q.Set("limit", "1")

	var rows []models.Board
	if err := c.selectRows(ctx, tableBoards, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FirstBoard returns the oldest board of a project, or nil.
func (c *Client) FirstBoard(ctx context.Context, projectID string) (*models.Board, error) {
	q := url.Values{}
	q.Set("project_id", eq(projectID))
	q.Set("order", "created_at.asc")
	q.Set("limit", "1")

	var rows []models.Board
	if err := c.selectRows(ctx, tableBoards, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// NextTaskPosition returns one past the highest task position on a board,
// or 0 for an empty board.
func (c *Client) NextTaskPosition(ctx context.Context, boardID string) (int, error) {
	q := url.Values{}
	q.Set("select", "position")
	q.Set("board_id", eq(boardID))
	q.Set("order", "position.desc")
	q.Set("limit", "1")

	var rows []struct {
		Position *int `json:"position"`
	}
	if err := c.selectRows(ctx, tableTasks, q, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 || rows[0].Position == nil {
		return 0, nil
	}
	return *rows[0].Position + 1, nil
}

// CreateTask inserts a task and returns the stored row.
func (c *Client) CreateTask(ctx context.Context, t models.Task) (*models.Task, error) {
	var out models.Task
	if err := c.insertRow(ctx, tableTasks, nil, "return=representation", t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask returns a task, or nil when it does not exist.
func (c *Client) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	q := url.Values{}
	q.Set("id", eq(taskID))
	q.Set("limit", "1")

	var rows []models.Task
	if err := c.selectRows(ctx, tableTasks, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// MoveTask applies the non-nil fields of move and returns the updated row.
func (c *Client) MoveTask(ctx context.Context, taskID string, move models.TaskMove) (*models.Task, error) {
	q := url.Values{}
	q.Set("id", eq(taskID))
	data, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/rest/v1/" + tableTasks,
		query:  q,
		body:   move,
		prefer: "return=representation",
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", tableTasks, err)
	}
	var out models.Task
	if err := decodeSingle(tableTasks, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpcomingTasks returns up to limit tasks assigned to or owned by email that
// are due after the given instant, soonest first.
func (c *Client) UpcomingTasks(ctx context.Context, email string, after time.Time, limit int) ([]models.Task, error) {
	q := url.Values{}
	q.Set("or", "(assignee.eq."+quoted(email)+",owner.eq."+quoted(email)+")")
	q.Set("due_date", "gt."+after.UTC().Format(time.RFC3339))
	q.Set("order", "due_date.asc")
	q.Set("limit", strconv.Itoa(limit))

	rows := []models.Task{}
	if err := c.selectRows(ctx, tableTasks, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DueTasks returns up to limit tasks due in [from, to] whose reminder has
// not been sent.
func (c *Client) DueTasks(ctx context.Context, from, to time.Time, limit int) ([]models.Task, error) {
	q := url.Values{}
	q.Add("due_date", "gte."+from.UTC().Format(time.RFC3339))
	q.Add("due_date", "lte."+to.UTC().Format(time.RFC3339))
	q.Set("reminder_sent", "is.false")
	q.Set("order", "due_date.asc")
	q.Set("limit", strconv.Itoa(limit))

	var rows []models.Task
	if err := c.selectRows(ctx, tableTasks, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkReminderSent flags a task so it is not reminded again.
func (c *Client) MarkReminderSent(ctx context.Context, taskID string) error {
	q := url.Values{}
	q.Set("id", eq(taskID))
	_, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/rest/v1/" + tableTasks,
		query:  q,
		body:   map[string]bool{"reminder_sent": true},
		prefer: "return=minimal",
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", tableTasks, err)
	}
	return nil
}

// PendingInvitation returns the pending invitation for (project, email), or nil.
func (c *Client) PendingInvitation(ctx context.Context, projectID, email string) (*models.Invitation, error) {
	q := url.Values{}
	q.Set("select", "id,project_id,invited_email,role,status,expires_at")
	q.Set("project_id", eq(projectID))
	q.Set("invited_email", eq(email))
	q.Set("status", eq(models.InvitationPending))
	q.Set("limit", "1")

	var rows []models.Invitation
	if err := c.selectRows(ctx, tableInvitations, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CreateInvitation inserts an invitation and returns the stored row.
func (c *Client) CreateInvitation(ctx context.Context, inv models.Invitation) (*models.Invitation, error) {
	var out models.Invitation
	if err := c.insertRow(ctx, tableInvitations, nil, "return=representation", inv, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages returns up to limit chat messages, oldest first.
func (c *Client) ListMessages(ctx context.Context, projectID string, limit int) ([]models.ChatMessage, error) {
	q := url.Values{}
	q.Set("project_id", eq(projectID))
	q.Set("order", "created_at.asc")
	q.Set("limit", strconv.Itoa(limit))

	rows := []models.ChatMessage{}
	if err := c.selectRows(ctx, tableMessages, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateMessage persists a chat message.
func (c *Client) CreateMessage(ctx context.Context, m models.ChatMessage) (*models.ChatMessage, error) {
	var out models.ChatMessage
	if err := c.insertRow(ctx, tableMessages, nil, "return=representation", m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListActivity returns up to limit activity rows, newest first.
func (c *Client) ListActivity(ctx context.Context, projectID string, limit int) ([]models.ActivityLog, error) {
	q := url.Values{}
	q.Set("project_id", eq(projectID))
	q.Set("order", "created_at.desc")
	q.Set("limit", strconv.Itoa(limit))

	rows := []models.ActivityLog{}
	if err := c.selectRows(ctx, tableActivity, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertActivity appends an activity row.
func (c *Client) InsertActivity(ctx context.Context, entry models.ActivityLog) error {
	return c.insertRow(ctx, tableActivity, nil, "return=minimal", entry, nil)
}
