// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/syncify/config.yaml",
	"/etc/syncify/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        5000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Supabase: SupabaseConfig{
			RequestTimeout: 0, // no timeout unless configured
			BreakerEnabled: true,
		},
		Security: SecurityConfig{
			AuthMode:          "supabase",
			AdminEmails:       []string{},
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			Casbin: CasbinConfig{
				CacheTTL: 5 * time.Minute,
			},
		},
		Realtime: RealtimeConfig{
			SendBuffer:     256,
			MaxMessageSize: 512 * 1024,
			PongWait:       60 * time.Second,
			WriteWait:      10 * time.Second,
		},
		Reminders: ReminderConfig{
			Enabled:    true,
			Interval:   5 * time.Minute,
			Lookahead:  24 * time.Hour,
			BatchLimit: 200,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		FrontendURL: "http://localhost:5173",
	}
}

// Load reads configuration with precedence ENV > file > defaults and
// validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.admin_emails",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"port":         "server.port",
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Supabase
	"supabase_url":              "supabase.url",
	"supabase_anon_key":         "supabase.anon_key",
	"supabase_service_role_key": "supabase.service_role_key",
	"supabase_jwt_secret":       "supabase.jwt_secret",
	"supabase_request_timeout":  "supabase.request_timeout",
	"supabase_breaker_enabled":  "supabase.breaker_enabled",

	// Security
	"auth_mode":           "security.auth_mode",
	"admin_emails":        "security.admin_emails",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"casbin_model_path":   "security.casbin.model_path",
	"casbin_policy_path":  "security.casbin.policy_path",
	"casbin_cache_ttl":    "security.casbin.cache_ttl",

	// Realtime relay
	"realtime_send_buffer":      "realtime.send_buffer",
	"realtime_max_message_size": "realtime.max_message_size",
	"realtime_pong_wait":        "realtime.pong_wait",
	"realtime_write_wait":       "realtime.write_wait",
	"realtime_frame_rate":       "realtime.frame_rate",
	"realtime_frame_burst":      "realtime.frame_burst",

	// Reminder worker
	"reminders_enabled":    "reminders.enabled",
	"reminder_interval":    "reminders.interval",
	"reminder_lookahead":   "reminders.lookahead",
	"reminder_batch_limit": "reminders.batch_limit",

	// SMTP
	"smtp_host": "smtp.host",
	"smtp_port": "smtp.port",
	"smtp_user": "smtp.username",
	"smtp_pass": "smtp.password",
	"smtp_from": "smtp.from",

	"frontend_url": "frontend_url",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
// Examples:
//   - SUPABASE_URL -> supabase.url
//   - PORT -> server.port
//   - ADMIN_EMAILS -> security.admin_emails
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
