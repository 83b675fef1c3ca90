// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour

	minJWTSecretLength = 32
	maxReminderBatch   = 1000
)

var (
	validAuthModes  = map[string]bool{"supabase": true, "jwt": true}
	validLogLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "console": true}
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSupabase,
		c.validateSecurity,
		c.validateRealtime,
		c.validateReminders,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateSupabase() error {
	if c.Supabase.URL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if err := validateHTTPURL(c.Supabase.URL, "SUPABASE_URL"); err != nil {
		return err
	}
	if c.Supabase.ServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	if c.Supabase.RequestTimeout < 0 {
		return fmt.Errorf("SUPABASE_REQUEST_TIMEOUT must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: supabase, jwt (got %q)", c.Security.AuthMode)
	}
	if c.Security.AuthMode == "jwt" && len(c.Supabase.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("SUPABASE_JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", minJWTSecretLength)
	}
	for _, email := range c.Security.AdminEmails {
		if !strings.Contains(email, "@") {
			return fmt.Errorf("ADMIN_EMAILS contains an invalid address: %q", email)
		}
	}
	if c.IsProduction() && slices.Contains(c.Security.CORSOrigins, "*") {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed when ENVIRONMENT=production; " +
			"set specific origins, e.g. CORS_ORIGINS=https://app.example.com")
	}
	return c.validateRateLimits()
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateRealtime() error {
	if c.Realtime.SendBuffer < 1 {
		return fmt.Errorf("REALTIME_SEND_BUFFER must be at least 1")
	}
	if c.Realtime.MaxMessageSize < 1024 {
		return fmt.Errorf("REALTIME_MAX_MESSAGE_SIZE must be at least 1024 bytes")
	}
	if c.Realtime.PongWait <= 0 || c.Realtime.WriteWait <= 0 {
		return fmt.Errorf("REALTIME_PONG_WAIT and REALTIME_WRITE_WAIT must be positive")
	}
	if c.Realtime.FrameRate < 0 || c.Realtime.FrameBurst < 0 {
		return fmt.Errorf("REALTIME_FRAME_RATE and REALTIME_FRAME_BURST must not be negative")
	}
	return nil
}

func (c *Config) validateReminders() error {
	if !c.Reminders.Enabled {
		return nil
	}
	if c.Reminders.Interval < time.Second {
		return fmt.Errorf("REMINDER_INTERVAL must be at least 1s")
	}
	if c.Reminders.Lookahead <= 0 {
		return fmt.Errorf("REMINDER_LOOKAHEAD must be positive")
	}
	if c.Reminders.BatchLimit < 1 || c.Reminders.BatchLimit > maxReminderBatch {
		return fmt.Errorf("REMINDER_BATCH_LIMIT must be between 1 and %d", maxReminderBatch)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
