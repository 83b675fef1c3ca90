// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Command server runs the Syncify API, realtime relay and reminder worker
// under one supervisor tree.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/syncify/internal/api"
	"github.com/tomtom215/syncify/internal/auth"
	"github.com/tomtom215/syncify/internal/authz"
	"github.com/tomtom215/syncify/internal/config"
	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/mail"
	"github.com/tomtom215/syncify/internal/realtime"
	"github.com/tomtom215/syncify/internal/reminders"
	"github.com/tomtom215/syncify/internal/supabase"
	"github.com/tomtom215/syncify/internal/supervisor"
	"github.com/tomtom215/syncify/internal/supervisor/services"
)

// hubQueueSize bounds events waiting for the relay goroutine.
const hubQueueSize = 1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Syncify")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Shutdown complete")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := supabase.NewClient(&cfg.Supabase)
	if err := store.Ping(ctx); err != nil {
		logging.Warn().Err(err).Msg("Supabase not reachable yet, readiness will report not ready")
	}

	provider, err := newIdentityProvider(cfg, store)
	if err != nil {
		return err
	}

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{
		ModelPath:   cfg.Security.Casbin.ModelPath,
		PolicyPath:  cfg.Security.Casbin.PolicyPath,
		AdminEmails: cfg.Security.AdminEmails,
		CacheTTL:    cfg.Security.Casbin.CacheTTL,
	})
	if err != nil {
		return err
	}

	logSecurityWarnings(cfg)

	var mailer mail.Sender
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPSender(cfg.SMTP)
	} else {
		logging.Warn().Msg("SMTP_HOST not set, invitation and reminder emails are disabled")
	}

	hub := realtime.NewHub(realtime.NewRelay(), hubQueueSize)

	handler := api.NewHandler(api.HandlerDeps{
		Store:  store,
		Pinger: store,
		Mailer: mailer,
		Hub:    hub,
		Config: cfg,
	})
	router := api.NewRouter(handler,
		auth.NewMiddleware(auth.NewGuard(provider, cfg.Security.AdminEmails)),
		authz.NewMiddleware(authz.NewGuard(store), enforcer),
		api.NewChiMiddleware(api.ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			RateLimitRequests:  cfg.Security.RateLimitReqs,
			RateLimitWindow:    cfg.Security.RateLimitWindow,
			RateLimitDisabled:  cfg.Security.RateLimitDisabled,
		}),
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.Add(supervisor.LayerRealtime, services.NewRelayHubService(hub))
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(server, 10*time.Second))

	if cfg.Reminders.Enabled && mailer != nil {
		tree.Add(supervisor.LayerWorkers, reminders.NewService(store, mailer, reminders.Config{
			Interval:  cfg.Reminders.Interval,
			Lookahead: cfg.Reminders.Lookahead,
			Limit:     cfg.Reminders.BatchLimit,
		}))
		logging.Info().Dur("interval", cfg.Reminders.Interval).Msg("Reminder worker enabled")
	}

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newIdentityProvider selects how bearer tokens are resolved.
func newIdentityProvider(cfg *config.Config, store *supabase.Client) (auth.IdentityProvider, error) {
	switch cfg.Security.AuthMode {
	case "jwt":
		p, err := auth.NewJWTProvider(cfg.Supabase.JWTSecret)
		if err != nil {
			return nil, err
		}
		logging.Info().Msg("Verifying access tokens locally with the JWT secret")
		return p, nil
	default:
		logging.Info().Msg("Resolving access tokens through Supabase Auth")
		return store, nil
	}
}

func logSecurityWarnings(cfg *config.Config) {
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS_ORIGINS contains '*': any website may call the API and open realtime connections")
			break
		}
	}
	if len(cfg.Security.AdminEmails) == 0 {
		logging.Info().Msg("No ADMIN_EMAILS configured, operator routes are unreachable")
	}
	logging.Warn().Msg("The realtime channel at /ws does not authenticate connections")
}
