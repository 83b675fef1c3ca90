// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/authz"
	"github.com/tomtom215/syncify/internal/config"
	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/mail"
	"github.com/tomtom215/syncify/internal/models"
	"github.com/tomtom215/syncify/internal/realtime"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "json", Output: io.Discard})
}

const (
	adminEmail = "root@example.com"
	projectID  = "p1"
)

// tokens maps bearer tokens to users for fakeProvider.
var tokens = map[string]*auth.User{
	"tok-owner":    {ID: "u-owner", Email: "owner@example.com"},
	"tok-manager":  {ID: "u-manager", Email: "manager@example.com"},
	"tok-member":   {ID: "u-member", Email: "member@example.com"},
	"tok-viewer":   {ID: "u-viewer", Email: "viewer@example.com"},
	"tok-stranger": {ID: "u-stranger", Email: "stranger@example.com"},
	"tok-root":     {ID: "u-root", Email: adminEmail},
}

type fakeProvider struct{}

func (fakeProvider) ResolveUser(_ context.Context, token string) (*auth.User, error) {
	if u, ok := tokens[token]; ok {
		return u, nil
	}
	return nil, auth.ErrTokenRejected
}

// fakeStore is an in-memory Store. Every method fails with err when set.
type fakeStore struct {
	mu          sync.Mutex
	err         error
	projects    map[string]models.Project
	grants      []models.RoleGrant
	boards      []models.Board
	tasks       []models.Task
	invitations []models.Invitation
	messages    []models.ChatMessage
	activity    []models.ActivityLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: map[string]models.Project{projectID: {ID: projectID, Title: "Apollo"}},
		grants: []models.RoleGrant{
			{ProjectID: projectID, UserEmail: "owner@example.com", Role: "admin"},
			{ProjectID: projectID, UserEmail: "manager@example.com", Role: "manager"},
			{ProjectID: projectID, UserEmail: "member@example.com", Role: "member"},
			{ProjectID: projectID, UserEmail: "viewer@example.com", Role: "viewer"},
		},
	}
}

func (f *fakeStore) GetProject(_ context.Context, id string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeStore) CreateProject(_ context.Context, p models.Project) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.projects[p.ID] = p
	return &p, nil
}

func (f *fakeStore) CreateBoard(_ context.Context, b models.Board) (*models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.boards = append(f.boards, b)
	return &b, nil
}

func (f *fakeStore) GetBoard(_ context.Context, id string) (*models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.boards {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, nil
}

// ListUserProjects orders by CreatedAt descending; projects without a
// timestamp sort last.
func (f *fakeStore) ListUserProjects(_ context.Context, ownerID, email string) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	granted := map[string]bool{}
	for _, g := range f.grants {
		if g.UserEmail == email {
			granted[g.ProjectID] = true
		}
	}
	out := []models.Project{}
	for _, p := range f.projects {
		if p.OwnerID == ownerID || granted[p.ID] {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeStore) ListPublicProjects(_ context.Context, limit int) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Project{}
	for _, p := range f.projects {
		if p.Public {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortNewestFirst(ps []models.Project) {
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i].CreatedAt, ps[j].CreatedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
}

func (f *fakeStore) ProjectSummary(_ context.Context, pid string) (*models.ProjectSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sum := &models.ProjectSummary{TasksByStatus: map[string]int{}}
	for _, t := range f.tasks {
		if t.ProjectID == pid {
			sum.Tasks++
			sum.TasksByStatus[t.Status]++
		}
	}
	for _, m := range f.messages {
		if m.ProjectID == pid {
			sum.Messages++
		}
	}
	return sum, nil
}

func (f *fakeStore) QueryRoleGrant(_ context.Context, pid, email string) (*models.RoleGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, g := range f.grants {
		if g.ProjectID == pid && g.UserEmail == email {
			return &g, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListMembers(_ context.Context, pid string) ([]models.RoleGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.RoleGrant
	for _, g := range f.grants {
		if g.ProjectID == pid {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertMember(_ context.Context, grant models.RoleGrant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, g := range f.grants {
		if g.ProjectID == grant.ProjectID && g.UserEmail == grant.UserEmail {
			f.grants[i] = grant
			return nil
		}
	}
	f.grants = append(f.grants, grant)
	return nil
}

func (f *fakeStore) PendingInvitation(_ context.Context, pid, email string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, inv := range f.invitations {
		if inv.ProjectID == pid && inv.InvitedEmail == email && inv.Status == models.InvitationPending {
			return &inv, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateInvitation(_ context.Context, inv models.Invitation) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.invitations = append(f.invitations, inv)
	return &inv, nil
}

func (f *fakeStore) FirstBoard(_ context.Context, pid string) (*models.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.boards {
		if b.ProjectID == pid {
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) NextTaskPosition(_ context.Context, boardID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	next := 0
	for _, t := range f.tasks {
		if t.BoardID == boardID && t.Position >= next {
			next = t.Position + 1
		}
	}
	return next, nil
}

func (f *fakeStore) CreateTask(_ context.Context, t models.Task) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeStore) GetTask(_ context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) MoveTask(_ context.Context, id string, move models.TaskMove) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		if move.BoardID != nil {
			f.tasks[i].BoardID = *move.BoardID
		}
		if move.Position != nil {
			f.tasks[i].Position = *move.Position
		}
		t := f.tasks[i]
		return &t, nil
	}
	return nil, errors.New("task not found")
}

func (f *fakeStore) UpcomingTasks(_ context.Context, email string, after time.Time, limit int) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Task{}
	for _, t := range f.tasks {
		mine := t.Owner == email || (t.Assignee != nil && *t.Assignee == email)
		if mine && t.DueDate != nil && t.DueDate.After(after) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(*out[j].DueDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) ListMessages(_ context.Context, pid string, limit int) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.ChatMessage{}
	for _, m := range f.messages {
		if m.ProjectID == pid && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, m models.ChatMessage) (*models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeStore) ListActivity(_ context.Context, pid string, limit int) ([]models.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.ActivityLog{}
	for i := len(f.activity) - 1; i >= 0 && len(out) < limit; i-- {
		if a := f.activity[i]; a.ProjectID != nil && *a.ProjectID == pid {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertActivity(_ context.Context, entry models.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.activity = append(f.activity, entry)
	return nil
}

func (f *fakeStore) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.activity))
	for i, a := range f.activity {
		out[i] = a.Action
	}
	return out
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var errStoreDown = errors.New("store down")

// testEnv is a fully wired router over fakes.
type testEnv struct {
	store   *fakeStore
	mailer  *fakeMailer
	hub     *realtime.Hub
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	mailer := &fakeMailer{}
	hub := realtime.NewHub(realtime.NewRelay(), 64)

	cfg := &config.Config{FrontendURL: "https://app.example.com"}
	cfg.Security.CORSOrigins = []string{"https://app.example.com"}

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{AdminEmails: []string{adminEmail}})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}

	handler := NewHandler(HandlerDeps{
		Store:  store,
		Pinger: fakePinger{},
		Mailer: mailer,
		Hub:    hub,
		Config: cfg,
	})
	router := NewRouter(handler,
		auth.NewMiddleware(auth.NewGuard(fakeProvider{}, []string{adminEmail})),
		authz.NewMiddleware(authz.NewGuard(store), enforcer),
		NewChiMiddleware(ChiMiddlewareConfig{CORSAllowedOrigins: cfg.Security.CORSOrigins, RateLimitDisabled: true}),
	)

	return &testEnv{store: store, mailer: mailer, hub: hub, handler: router.SetupChi()}
}

// envelope mirrors models.APIResponse with Data left raw.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, env
}

func errCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}
