// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package services adapts Syncify components to suture.Service.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/syncify/internal/logging"
)

const defaultDrainTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the supervisor drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService keeps the API listener under supervision. On
// cancellation in-flight requests get drainTimeout to finish.
type HTTPServerService struct {
	server       HTTPServer
	drainTimeout time.Duration
}

// NewHTTPServerService wraps server; drain <= 0 selects 10s.
func NewHTTPServerService(server HTTPServer, drain time.Duration) *HTTPServerService {
	if drain <= 0 {
		drain = defaultDrainTimeout
	}
	return &HTTPServerService{server: server, drainTimeout: drain}
}

func (s *HTTPServerService) Serve(ctx context.Context) error {
	served := make(chan error, 1)
	go func() { served <- s.server.ListenAndServe() }()

	select {
	case err := <-served:
		return listenResult(err)
	case <-ctx.Done():
	}

	logging.Info().Dur("drain_timeout", s.drainTimeout).Msg("draining http server")
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainTimeout)
	defer cancel()
	if err := s.server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	if err := listenResult(<-served); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *HTTPServerService) String() string { return "http-server" }

// listenResult treats the ErrServerClosed that follows Shutdown as a clean exit.
func listenResult(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("http server failed: %w", err)
}
