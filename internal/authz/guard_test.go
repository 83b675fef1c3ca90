// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "json", Output: io.Discard})
}

// fakeStore is an in-memory RoleStore keyed by project id then email.
type fakeStore struct {
	mu     sync.Mutex
	grants map[string]map[string]string
	err    error
	calls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{grants: make(map[string]map[string]string)}
}

func (f *fakeStore) grant(projectID, email, role string) *fakeStore {
	if f.grants[projectID] == nil {
		f.grants[projectID] = make(map[string]string)
	}
	f.grants[projectID][email] = role
	return f
}

func (f *fakeStore) QueryRoleGrant(_ context.Context, projectID, userEmail string) (*models.RoleGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	role, ok := f.grants[projectID][userEmail]
	if !ok {
		return nil, nil
	}
	return &models.RoleGrant{ProjectID: projectID, UserEmail: userEmail, Role: role}, nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestAuthorize_RoleMatrix(t *testing.T) {
	t.Parallel()

	for _, held := range Roles() {
		for _, minRole := range Roles() {
			t.Run(string(held)+"_requires_"+string(minRole), func(t *testing.T) {
				t.Parallel()

				store := newFakeStore().grant("p1", "ann@example.com", string(held))
				got, err := NewGuard(store).Authorize(t.Context(), "ann@example.com", "p1", minRole)

				if held.Rank() >= minRole.Rank() {
					if err != nil {
						t.Fatalf("Authorize() error = %v, want nil", err)
					}
					if got != held {
						t.Errorf("Authorize() role = %q, want %q", got, held)
					}
					return
				}
				if !errors.Is(err, ErrInsufficientRole) {
					t.Errorf("Authorize() error = %v, want ErrInsufficientRole", err)
				}
				if got != "" {
					t.Errorf("Authorize() role = %q on denial, want empty", got)
				}
			})
		}
	}
}

func TestAuthorize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		store     *fakeStore
		email     string
		projectID string
		wantErr   error
		wantCalls int
	}{
		{
			name:      "missing project id skips store",
			store:     newFakeStore().grant("p1", "ann@example.com", "admin"),
			email:     "ann@example.com",
			projectID: "",
			wantErr:   ErrMissingProjectID,
			wantCalls: 0,
		},
		{
			name:      "empty email is not a member",
			store:     newFakeStore().grant("p1", "", "admin"),
			email:     "",
			projectID: "p1",
			wantErr:   ErrNotAMember,
			wantCalls: 0,
		},
		{
			name:      "no grant",
			store:     newFakeStore().grant("p2", "ann@example.com", "admin"),
			email:     "ann@example.com",
			projectID: "p1",
			wantErr:   ErrNotAMember,
			wantCalls: 1,
		},
		{
			name:      "store failure fails closed",
			store:     &fakeStore{err: errors.New("connection refused")},
			email:     "ann@example.com",
			projectID: "p1",
			wantErr:   auth.ErrGuardFailure,
			wantCalls: 1,
		},
		{
			name:      "unknown stored role denied",
			store:     newFakeStore().grant("p1", "ann@example.com", "owner"),
			email:     "ann@example.com",
			projectID: "p1",
			wantErr:   ErrInsufficientRole,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			role, err := NewGuard(tt.store).Authorize(t.Context(), tt.email, tt.projectID, RoleViewer)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize() error = %v, want %v", err, tt.wantErr)
			}
			if role != "" {
				t.Errorf("Authorize() role = %q, want empty", role)
			}
			if got := tt.store.callCount(); got != tt.wantCalls {
				t.Errorf("store calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestAuthorize_StoreFailureIsNotDenial(t *testing.T) {
	t.Parallel()

	_, err := NewGuard(&fakeStore{err: errors.New("timeout")}).Authorize(t.Context(), "ann@example.com", "p1", RoleViewer)
	if errors.Is(err, ErrNotAMember) || errors.Is(err, ErrInsufficientRole) {
		t.Errorf("store failure reported as denial: %v", err)
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, r := range Roles() {
		got, err := ParseRole(string(r))
		if err != nil || got != r {
			t.Errorf("ParseRole(%q) = %q, %v", r, got, err)
		}
	}
	for _, bad := range []string{"", "Admin", "owner"} {
		if _, err := ParseRole(bad); err == nil {
			t.Errorf("ParseRole(%q) expected error", bad)
		}
	}
	if Role("owner").AtLeast(RoleViewer) {
		t.Error("unknown role must not satisfy any minimum")
	}
}
