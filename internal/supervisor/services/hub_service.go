// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package services

import "context"

// ContextHub is satisfied by *realtime.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// RelayHubService supervises the realtime hub event loop.
type RelayHubService struct {
	hub ContextHub
}

// NewRelayHubService wraps hub.
func NewRelayHubService(hub ContextHub) *RelayHubService {
	return &RelayHubService{hub: hub}
}

// Serve implements suture.Service.
func (s *RelayHubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *RelayHubService) String() string {
	return "relay-hub"
}
