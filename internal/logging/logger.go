// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package logging owns the process-wide zerolog logger.
//
// main calls Init once with values from config; everything else writes
// through the level helpers or through Ctx when a request context is at hand:
//
//	logging.Info().Str("room_id", roomID).Msg("room created")
//	logging.Ctx(ctx).Warn().Err(err).Msg("role lookup failed")
//
// An event chain writes nothing until Msg or Send is called.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config describes how the global logger is built.
type Config struct {
	Level     string    // trace, debug, info, warn, error, fatal, panic or disabled
	Format    string    // "json" or "console"
	Caller    bool      // append file:line
	Timestamp bool      // append the time field
	Output    io.Writer // nil means os.Stderr
}

// DefaultConfig is JSON at info level with timestamps, written to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Timestamp: true, Output: os.Stderr}
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log before main gets to Init
func init() {
	Init(DefaultConfig())
}

// Init rebuilds the global logger from cfg. Safe to call repeatedly.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(out).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	l := ctx.Logger()
	current.Store(&l)
}

// parseLevel is case-insensitive, accepts "warning" as an alias and falls
// back to info for anything it does not recognize.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *current.Load()
}

// SetLogger swaps the global logger, mostly for tests capturing output.
//
//nolint:gocritic // zerolog.Logger is meant to be passed by value
func SetLogger(l zerolog.Logger) {
	current.Store(&l)
}

// NewTestLogger returns a timestamped JSON logger writing to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func Debug() *zerolog.Event { return current.Load().Debug() }
func Info() *zerolog.Event  { return current.Load().Info() }
func Warn() *zerolog.Event  { return current.Load().Warn() }
func Error() *zerolog.Event { return current.Load().Error() }

// Fatal exits the process with status 1 once the event is written.
func Fatal() *zerolog.Event { return current.Load().Fatal() }
