// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/models"
)

func TestCreateProject(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	status, body := env.do(t, http.MethodPost, "/api/v1/projects", "tok-stranger", `{"title":"Gemini","summary":"next"}`)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, error %+v", status, body.Error)
	}

	var p models.Project
	if err := json.Unmarshal(body.Data, &p); err != nil {
		t.Fatal(err)
	}
	if p.ID == "" || p.Title != "Gemini" || p.OwnerID != "u-stranger" {
		t.Errorf("project = %+v", p)
	}

	grant, _ := env.store.QueryRoleGrant(t.Context(), p.ID, "stranger@example.com")
	if grant == nil || grant.Role != "admin" {
		t.Errorf("creator grant = %+v, want admin", grant)
	}
	board, _ := env.store.FirstBoard(t.Context(), p.ID)
	if board == nil || board.Title != defaultBoardTitle {
		t.Errorf("board = %+v", board)
	}
	if got := env.store.actions(); len(got) != 1 || got[0] != "created project Gemini" {
		t.Errorf("activity = %v", got)
	}

	// The creator can now pass the guard on the new project.
	status, _ = env.do(t, http.MethodGet, "/api/v1/projects/"+p.ID+"/members", "tok-stranger", "")
	if status != http.StatusOK {
		t.Errorf("members as creator = %d, want 200", status)
	}
}

func TestCreateProject_Validation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	tests := []struct {
		name string
		body string
		code string
	}{
		{"blank title", `{"title":"   "}`, "VALIDATION_ERROR"},
		{"missing title", `{}`, "VALIDATION_ERROR"},
		{"malformed json", `{"title":`, "INVALID_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, "/api/v1/projects", "tok-owner", tt.body)
			if status != http.StatusBadRequest || errCode(body) != tt.code {
				t.Errorf("got %d %q, want 400 %q", status, errCode(body), tt.code)
			}
		})
	}
}

func TestInviteMember(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := "/api/v1/projects/" + projectID + "/invitations"

	status, body := env.do(t, http.MethodPost, path, "tok-manager", `{"email":"  New@Example.com ","role":"viewer"}`)
	if status != http.StatusCreated {
		t.Fatalf("status = %d, error %+v", status, body.Error)
	}
	if strings.Contains(string(body.Data), `"token"`) {
		t.Errorf("response leaks token: %s", body.Data)
	}

	var inv models.Invitation
	if err := json.Unmarshal(body.Data, &inv); err != nil {
		t.Fatal(err)
	}
	if inv.InvitedEmail != "new@example.com" || inv.Role != "viewer" || inv.Status != models.InvitationPending {
		t.Errorf("invitation = %+v", inv)
	}

	stored := env.store.invitations[0]
	if len(stored.Token) != 64 {
		t.Errorf("stored token length = %d, want 64 hex chars", len(stored.Token))
	}
	if len(env.mailer.sent) != 1 {
		t.Fatalf("mails = %d, want 1", len(env.mailer.sent))
	}
	msg := env.mailer.sent[0]
	if msg.To != "new@example.com" || !strings.Contains(msg.Text, "https://app.example.com/invitations/accept?token="+stored.Token) {
		t.Errorf("mail = %+v", msg)
	}
	if got := env.store.actions(); len(got) != 1 || got[0] != "invited new@example.com as viewer" {
		t.Errorf("activity = %v", got)
	}

	// Second invite to the same address is refused while pending.
	status, body = env.do(t, http.MethodPost, path, "tok-manager", `{"email":"new@example.com"}`)
	if status != http.StatusBadRequest || errCode(body) != "ALREADY_INVITED" {
		t.Errorf("repeat invite = %d %q", status, errCode(body))
	}
}

func TestInviteMember_Rejections(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := "/api/v1/projects/" + projectID + "/invitations"

	tests := []struct {
		name string
		body string
		code string
	}{
		{"existing member", `{"email":"member@example.com"}`, "ALREADY_MEMBER"},
		{"bad email", `{"email":"not-an-email"}`, "VALIDATION_ERROR"},
		{"bad role", `{"email":"x@example.com","role":"owner"}`, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodPost, path, "tok-owner", tt.body)
			if status != http.StatusBadRequest || errCode(body) != tt.code {
				t.Errorf("got %d %q, want 400 %q", status, errCode(body), tt.code)
			}
		})
	}
	if len(env.mailer.sent) != 0 {
		t.Errorf("mails sent on rejection: %d", len(env.mailer.sent))
	}
}

func TestInviteMember_MailFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.mailer.err = errors.New("smtp down")

	status, _ := env.do(t, http.MethodPost, "/api/v1/projects/"+projectID+"/invitations", "tok-owner", `{"email":"late@example.com"}`)
	if status != http.StatusCreated {
		t.Errorf("status = %d, want 201", status)
	}
	if got := env.store.invitations[0].Role; got != "member" {
		t.Errorf("default role = %q, want member", got)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	id := &auth.CallerIdentity{Claims: map[string]any{"user_metadata": map[string]any{"full_name": "Ann Lee"}}}
	if got := displayName(id); got != "Ann Lee" {
		t.Errorf("displayName = %q", got)
	}
	if got := displayName(&auth.CallerIdentity{}); got != "" {
		t.Errorf("displayName(empty) = %q", got)
	}
}

func TestInviteMember_NormalizesEmailBeforeChecks(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := "/api/v1/projects/" + projectID + "/invitations"

	status, body := env.do(t, http.MethodPost, path, "tok-owner", `{"email":"  Member@Example.COM "}`)
	if status != http.StatusBadRequest || errCode(body) != "ALREADY_MEMBER" {
		t.Errorf("padded existing member = %d %q, want 400 ALREADY_MEMBER", status, errCode(body))
	}

	status, body = env.do(t, http.MethodPost, path, "tok-owner", `{"email":"\tGuest@Example.com\n","role":" viewer "}`)
	if status != http.StatusCreated {
		t.Fatalf("padded invite = %d, error %+v", status, body.Error)
	}
	if got := env.store.invitations[0]; got.InvitedEmail != "guest@example.com" || got.Role != "viewer" {
		t.Errorf("stored invitation = %+v", got)
	}
}

func TestListProjects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)
	env.store.projects[projectID] = models.Project{ID: projectID, Title: "Apollo", OwnerID: "u-owner", CreatedAt: &older}
	env.store.projects["p2"] = models.Project{ID: "p2", Title: "Mine", OwnerID: "u-member", CreatedAt: &newer}
	env.store.projects["p3"] = models.Project{ID: "p3", Title: "Other", OwnerID: "u-owner", Public: true}

	tests := []struct {
		token string
		want  []string
	}{
		{"tok-member", []string{"p2", projectID}},
		{"tok-owner", []string{projectID, "p3"}},
		{"tok-stranger", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, "/api/v1/projects", tt.token, "")
			if status != http.StatusOK {
				t.Fatalf("status = %d, error %+v", status, body.Error)
			}
			var got []models.Project
			if err := json.Unmarshal(body.Data, &got); err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("projects = %+v, want ids %v", got, tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("projects[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestListPublicProjects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.store.projects["p2"] = models.Project{ID: "p2", Title: "Open", Public: true}

	status, body := env.do(t, http.MethodGet, "/api/v1/projects/public", "", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, error %+v", status, body.Error)
	}
	var got []models.Project
	if err := json.Unmarshal(body.Data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("public projects = %+v", got)
	}
}

func TestProjectSummary(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.store.tasks = []models.Task{
		{ID: "t1", ProjectID: projectID, Status: "todo"},
		{ID: "t2", ProjectID: projectID, Status: "done"},
		{ID: "t3", ProjectID: "elsewhere", Status: "todo"},
	}
	env.store.messages = []models.ChatMessage{{ProjectID: projectID, Content: "hi"}}
	path := "/api/v1/projects/" + projectID + "/summary"

	status, body := env.do(t, http.MethodGet, path, "tok-viewer", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, error %+v", status, body.Error)
	}
	var sum models.ProjectSummary
	if err := json.Unmarshal(body.Data, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Tasks != 2 || sum.TasksByStatus["done"] != 1 || sum.Messages != 1 || sum.Files != 0 {
		t.Errorf("summary = %+v", sum)
	}

	status, body = env.do(t, http.MethodGet, path, "tok-stranger", "")
	if status != http.StatusForbidden || errCode(body) != "NOT_A_MEMBER" {
		t.Errorf("stranger = %d %q", status, errCode(body))
	}
}
