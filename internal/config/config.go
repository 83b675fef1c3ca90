// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package config loads Syncify configuration from defaults, an optional YAML
// file and environment variables (highest priority), in that order.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig   `koanf:"server"`
	Supabase  SupabaseConfig `koanf:"supabase"`
	Security  SecurityConfig `koanf:"security"`
	Realtime  RealtimeConfig `koanf:"realtime"`
	Reminders ReminderConfig `koanf:"reminders"`
	SMTP      SMTPConfig     `koanf:"smtp"`
	Logging   LoggingConfig  `koanf:"logging"`

	// FrontendURL is the base URL used to build links in outgoing email.
	FrontendURL string `koanf:"frontend_url"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// SupabaseConfig points at the managed identity provider and relational store.
//
// Environment Variables:
//   - SUPABASE_URL: project base URL (required)
//   - SUPABASE_SERVICE_ROLE_KEY: key used for PostgREST calls (required)
//   - SUPABASE_ANON_KEY: public key sent as apikey on GoTrue calls
//   - SUPABASE_JWT_SECRET: HS256 secret, required when AUTH_MODE=jwt
//   - SUPABASE_REQUEST_TIMEOUT: per-call timeout, 0 disables it
type SupabaseConfig struct {
	URL            string        `koanf:"url"`
	AnonKey        string        `koanf:"anon_key"`
	ServiceRoleKey string        `koanf:"service_role_key"`
	JWTSecret      string        `koanf:"jwt_secret"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	BreakerEnabled bool          `koanf:"breaker_enabled"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	// AuthMode selects how bearer tokens are resolved: "supabase" asks the
	// identity provider, "jwt" verifies them locally with the JWT secret.
	AuthMode          string        `koanf:"auth_mode"`
	AdminEmails       []string      `koanf:"admin_emails"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	Casbin            CasbinConfig  `koanf:"casbin"`
}

// CasbinConfig controls the platform-level policy enforcer.
// Empty paths use the embedded model and policy.
type CasbinConfig struct {
	ModelPath  string        `koanf:"model_path"`
	PolicyPath string        `koanf:"policy_path"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

// RealtimeConfig tunes the websocket relay.
type RealtimeConfig struct {
	SendBuffer     int           `koanf:"send_buffer"`
	MaxMessageSize int64         `koanf:"max_message_size"`
	PongWait       time.Duration `koanf:"pong_wait"`
	WriteWait      time.Duration `koanf:"write_wait"`
	// FrameRate caps inbound frames per second per connection; 0 disables.
	FrameRate  float64 `koanf:"frame_rate"`
	FrameBurst int     `koanf:"frame_burst"`
}

// ReminderConfig drives the due-task reminder worker.
type ReminderConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Interval   time.Duration `koanf:"interval"`
	Lookahead  time.Duration `koanf:"lookahead"`
	BatchLimit int           `koanf:"batch_limit"`
}

// SMTPConfig holds outgoing mail settings. An empty host disables delivery.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Sender returns the From address for outgoing mail, falling back to the
// SMTP username.
func (s SMTPConfig) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}
