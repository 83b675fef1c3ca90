// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

/*
Package authz decides whether an authenticated caller may act on a project.

Project roles are ranked viewer < member < manager < admin. A route declares
a minimum role; Guard.Authorize loads the caller's single grant for the
project from a RoleStore and compares ranks. A missing grant is
ErrNotAMember, a lower rank is ErrInsufficientRole, and a store failure is
auth.ErrGuardFailure rather than a denial.

# Project id resolution

RequireProjectRole finds the project id in the route parameter first, then
a JSON body field, then the query string. The body is inspected up to a
fixed prefix and handed on to the handler unchanged.

# Platform policy

A Casbin enforcer gates platform routes such as /api/v1/admin. Its model and
policy are embedded, and may be replaced from files. With a cache TTL set,
decisions are cached and dropped when a subject's roles change.
*/
package authz
