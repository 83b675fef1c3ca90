// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import "fmt"

// Role is a project-scoped permission level.
type Role string

// Project roles, lowest to highest.
const (
	RoleViewer  Role = "viewer"
	RoleMember  Role = "member"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer:  0,
	RoleMember:  1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// Roles lists every valid role in ascending rank.
func Roles() []Role {
	return []Role{RoleViewer, RoleMember, RoleManager, RoleAdmin}
}

// ParseRole converts a stored role string. Unknown values are an error.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Rank returns the role's position in the total order, or -1 if unknown.
func (r Role) Rank() int {
	if rank, ok := roleRank[r]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether r ranks at or above minRole.
func (r Role) AtLeast(minRole Role) bool {
	return r.Rank() >= 0 && r.Rank() >= minRole.Rank()
}

func (r Role) String() string {
	return string(r)
}
