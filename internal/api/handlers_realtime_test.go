// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/syncify/internal/realtime"
)

func serveEnv(t *testing.T, env *testEnv) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.hub.RunWithContext(ctx) }()

	srv := httptest.NewServer(env.handler)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestWebSocket_UnauthenticatedJoin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	url := serveEnv(t, env)

	// No Authorization header: the realtime channel does not authenticate.
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = resp.Body.Close()
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"joinRoom","data":{"roomId":"p1","user":{"name":"anon"}}}`)); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg realtime.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != realtime.EventPresence || !strings.Contains(string(msg.Data), `"anon"`) {
		t.Errorf("frame = %s", data)
	}

	// The operator snapshot reflects the room.
	status, body := env.do(t, http.MethodGet, "/api/v1/admin/realtime/rooms", "tok-root", "")
	if status != http.StatusOK {
		t.Fatalf("rooms = %d", status)
	}
	var rooms []realtime.RoomSnapshot
	if err := json.Unmarshal(body.Data, &rooms); err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 1 || rooms[0].RoomID != "p1" || rooms[0].Members != 1 {
		t.Errorf("rooms = %+v", rooms)
	}
}

func TestWebSocket_OriginCheck(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	url := serveEnv(t, env)

	tests := []struct {
		origin string
		ok     bool
	}{
		{"https://app.example.com", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		header := http.Header{"Origin": []string{tt.origin}}
		conn, resp, err := websocket.DefaultDialer.Dial(url, header)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if tt.ok {
			if err != nil {
				t.Errorf("origin %s: dial error %v", tt.origin, err)
				continue
			}
			_ = conn.Close()
			continue
		}
		if err == nil {
			_ = conn.Close()
			t.Errorf("origin %s: dial succeeded, want rejection", tt.origin)
		} else if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Errorf("origin %s: response %v, want 403", tt.origin, resp)
		}
	}
}

func TestWebSocket_NoHub(t *testing.T) {
	t.Parallel()

	h := NewHandler(HandlerDeps{Store: newFakeStore()})
	rec := httptest.NewRecorder()
	h.WebSocket(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
