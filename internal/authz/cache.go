// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import (
	"sync"
	"time"
)

// decisionCache memoizes platform policy decisions for ttl. Expired
// entries are pruned on write, at most once per ttl, so no background
// goroutine is needed.
type decisionCache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	entries   map[policyRequest]cachedDecision
	nextSweep time.Time
}

type policyRequest struct{ sub, obj, act string }

type cachedDecision struct {
	allowed  bool
	deadline time.Time
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	return &decisionCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[policyRequest]cachedDecision),
	}
}

func (c *decisionCache) lookup(req policyRequest) (allowed, hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[req]
	if !ok || !c.now().Before(d.deadline) {
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) store(req policyRequest, allowed bool) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.After(c.nextSweep) {
		for k, d := range c.entries {
			if !now.Before(d.deadline) {
				delete(c.entries, k)
			}
		}
		c.nextSweep = now.Add(c.ttl)
	}
	c.entries[req] = cachedDecision{allowed: allowed, deadline: now.Add(c.ttl)}
}

// forget drops every decision made for sub.
func (c *decisionCache) forget(sub string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.sub == sub {
			delete(c.entries, k)
		}
	}
}

func (c *decisionCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
