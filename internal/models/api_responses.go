// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package models holds the JSON shapes shared by the HTTP layer, the
// Supabase client and the background workers.
package models

import "time"

// APIResponse is the envelope returned by every REST endpoint.
//
// Success:
//
//	{"status":"success","data":{...},"metadata":{"timestamp":"2026-01-02T10:00:00Z"}}
//
// Error:
//
//	{"status":"error","data":null,"metadata":{...},"error":{"code":"NOT_A_MEMBER","message":"Not a member of project"}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError carries a stable machine-readable code plus a human message.
//
// Codes used by the guard:
//   - MISSING_CREDENTIAL, INVALID_CREDENTIAL (401)
//   - MISSING_PROJECT_ID (400)
//   - NOT_A_MEMBER, INSUFFICIENT_ROLE (403)
//   - GUARD_FAILURE (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
