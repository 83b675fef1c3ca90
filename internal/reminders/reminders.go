// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package reminders periodically emails assignees of tasks that are due
// soon and flags each task so it is reminded once.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/mail"
	"github.com/tomtom215/syncify/internal/metrics"
	"github.com/tomtom215/syncify/internal/models"
)

// Store reads due tasks and marks them reminded.
type Store interface {
	DueTasks(ctx context.Context, from, to time.Time, limit int) ([]models.Task, error)
	MarkReminderSent(ctx context.Context, taskID string) error
}

// Config controls the sweep.
type Config struct {
	Interval  time.Duration
	Lookahead time.Duration
	Limit     int
}

// Service runs the sweep on a fixed interval. It implements suture.Service.
type Service struct {
	store  Store
	sender mail.Sender
	cfg    Config
	now    func() time.Time
}

// NewService creates a reminder service.
func NewService(store Store, sender mail.Sender, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 24 * time.Hour
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 200
	}
	return &Service{store: store, sender: sender, cfg: cfg, now: time.Now}
}

// Serve sweeps once per interval until ctx is canceled. Sweep errors are
// logged; the loop keeps running.
func (s *Service) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", s.cfg.Interval).Msg("Reminder worker started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Warn().Err(err).Msg("Reminder sweep failed")
			}
		}
	}
}

// RunOnce processes one batch and returns how many reminders were sent.
// Every fetched task is marked reminded, whether or not mail went out.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	start := s.now()
	defer func() { metrics.ReminderRunDuration.Observe(time.Since(start).Seconds()) }()

	tasks, err := s.store.DueTasks(ctx, start, start.Add(s.cfg.Lookahead), s.cfg.Limit)
	if err != nil {
		return 0, fmt.Errorf("fetch due tasks: %w", err)
	}

	sent := 0
	for i := range tasks {
		t := &tasks[i]
		if t.Assignee != nil && *t.Assignee != "" && t.DueDate != nil {
			msg := mail.BuildReminder(*t.Assignee, t.Title, *t.DueDate)
			if err := s.sender.Send(ctx, msg); err != nil {
				metrics.RemindersSent.WithLabelValues("failed").Inc()
				logging.Warn().Err(err).Str("task_id", t.ID).Str("assignee", logging.SanitizeEmail(*t.Assignee)).Msg("Reminder email failed")
			} else {
				sent++
				metrics.RemindersSent.WithLabelValues("sent").Inc()
			}
		} else {
			metrics.RemindersSent.WithLabelValues("unassigned").Inc()
		}

		if err := s.store.MarkReminderSent(ctx, t.ID); err != nil {
			logging.Warn().Err(err).Str("task_id", t.ID).Msg("Failed to mark reminder sent")
		}
	}

	logging.Debug().Int("due", len(tasks)).Int("sent", sent).Msg("Reminder sweep complete")
	return sent, nil
}

// String names the service in supervisor logs.
func (s *Service) String() string {
	return "reminder-worker"
}
