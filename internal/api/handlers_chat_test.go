// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/models"
)

func TestMessages(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := "/api/v1/projects/" + projectID + "/messages"

	status, body := env.do(t, http.MethodPost, path, "tok-viewer", `{"content":"hi"}`)
	if status != http.StatusForbidden || errCode(body) != "INSUFFICIENT_ROLE" {
		t.Errorf("viewer post = %d %q, want 403 INSUFFICIENT_ROLE", status, errCode(body))
	}

	for _, c := range []string{"first", "second"} {
		if status, body := env.do(t, http.MethodPost, path, "tok-member", `{"content":"`+c+`"}`); status != http.StatusCreated {
			t.Fatalf("post %q = %d %+v", c, status, body.Error)
		}
	}

	status, body = env.do(t, http.MethodGet, path, "tok-viewer", "")
	if status != http.StatusOK {
		t.Fatalf("list = %d", status)
	}
	var msgs []models.ChatMessage
	if err := json.Unmarshal(body.Data, &msgs); err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Content != "first" || msgs[0].UserEmail != "member@example.com" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestActivity(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/projects/"+projectID+"/tasks", "tok-member", `{"title":"One"}`)

	status, body := env.do(t, http.MethodGet, "/api/v1/projects/"+projectID+"/activity", "tok-viewer", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var entries []models.ActivityLog
	if err := json.Unmarshal(body.Data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Action != "created task One" {
		t.Errorf("entries = %+v, want newest first", entries)
	}
}
