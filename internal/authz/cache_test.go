// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import (
	"testing"
	"time"
)

func TestDecisionCache_ExpiresAndSweeps(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := newDecisionCache(time.Minute)
	c.now = func() time.Time { return clock }

	alice := policyRequest{"alice@example.com", "/api/v1/admin/x", "read"}
	c.store(alice, true)
	if allowed, hit := c.lookup(alice); !hit || !allowed {
		t.Fatalf("lookup = %v, %v; want cached allow", allowed, hit)
	}

	clock = clock.Add(time.Minute)
	if _, hit := c.lookup(alice); hit {
		t.Error("expired decision still served")
	}

	clock = clock.Add(time.Second)
	c.store(policyRequest{"bob@example.com", "/api/v1/admin/x", "read"}, false)
	if c.size() != 1 {
		t.Errorf("size after sweep = %d, want 1", c.size())
	}
}

func TestDecisionCache_Forget(t *testing.T) {
	t.Parallel()

	c := newDecisionCache(time.Hour)
	c.store(policyRequest{"a@x.io", "/p", "read"}, true)
	c.store(policyRequest{"a@x.io", "/p", "write"}, false)
	c.store(policyRequest{"b@x.io", "/p", "read"}, true)

	c.forget("a@x.io")
	if c.size() != 1 {
		t.Errorf("size = %d, want 1", c.size())
	}
}
