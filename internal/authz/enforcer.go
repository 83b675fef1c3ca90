// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

// PlatformAdminRole is bound to every configured admin email.
const PlatformAdminRole = "platform_admin"

var (
	//go:embed model.conf
	builtinModel string

	//go:embed policy.csv
	builtinPolicy string
)

// EnforcerConfig selects the Casbin model and policy. Paths that do not
// exist fall back to the built-in files.
type EnforcerConfig struct {
	ModelPath   string
	PolicyPath  string
	AdminEmails []string
	CacheTTL    time.Duration // 0 disables caching
}

// Enforcer answers platform-level policy questions (the /admin surface).
// Project roles are not stored here; see Guard.
type Enforcer struct {
	casbin *casbin.SyncedEnforcer
	cache  *decisionCache
}

func NewEnforcer(cfg EnforcerConfig) (*Enforcer, error) {
	m, err := loadModel(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var adapter persist.Adapter = stringadapter.NewAdapter(builtinPolicy)
	if ok, statErr := usableFile(cfg.PolicyPath); statErr != nil {
		return nil, statErr
	} else if ok {
		adapter = fileadapter.NewAdapter(cfg.PolicyPath)
	}

	se, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	// Admin bindings come from config on every start; never write them back.
	se.EnableAutoSave(false)

	e := &Enforcer{casbin: se}
	if cfg.CacheTTL > 0 {
		e.cache = newDecisionCache(cfg.CacheTTL)
	}
	for _, email := range cfg.AdminEmails {
		if sub := normalizeSubject(email); sub != "" {
			if err := e.AddRoleForUser(sub, PlatformAdminRole); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}

func loadModel(path string) (model.Model, error) {
	ok, err := usableFile(path)
	if err != nil {
		return nil, err
	}
	if ok {
		return model.NewModelFromFile(path)
	}
	return model.NewModelFromString(builtinModel)
}

// usableFile reports whether path names an existing file. A missing file is
// not an error; any other stat failure is.
func usableFile(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("casbin file %s: %w", path, err)
	}
}

// Enforce reports whether sub may perform act on obj.
func (e *Enforcer) Enforce(sub, obj, act string) (bool, error) {
	req := policyRequest{sub, obj, act}
	if e.cache != nil {
		if allowed, hit := e.cache.lookup(req); hit {
			return allowed, nil
		}
	}
	allowed, err := e.casbin.Enforce(sub, obj, act)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	if e.cache != nil {
		e.cache.store(req, allowed)
	}
	return allowed, nil
}

// AddRoleForUser binds user to role and forgets the user's cached decisions.
func (e *Enforcer) AddRoleForUser(user, role string) error {
	if _, err := e.casbin.AddGroupingPolicy(user, role); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	if e.cache != nil {
		e.cache.forget(user)
	}
	return nil
}

func (e *Enforcer) RolesForUser(user string) ([]string, error) {
	return e.casbin.GetRolesForUser(user)
}

// MethodToAction maps safe methods to "read" and everything else to "write".
func MethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	}
	return "write"
}

func normalizeSubject(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
