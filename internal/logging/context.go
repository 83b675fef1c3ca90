// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// traceIDs is stored in a context once per request; setters copy it so a
// parent context never observes a child's IDs.
type traceIDs struct {
	request     string
	correlation string
}

type traceKey struct{}

func idsFrom(ctx context.Context) traceIDs {
	ids, _ := ctx.Value(traceKey{}).(traceIDs)
	return ids
}

// GenerateRequestID returns a full UUID.
func GenerateRequestID() string { return uuid.NewString() }

// GenerateCorrelationID returns a short 8-character ID for grouping log lines.
func GenerateCorrelationID() string { return uuid.NewString()[:8] }

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	ids := idsFrom(ctx)
	ids.request = id
	return context.WithValue(ctx, traceKey{}, ids)
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	ids := idsFrom(ctx)
	ids.correlation = id
	return context.WithValue(ctx, traceKey{}, ids)
}

func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// RequestIDFromContext returns "" when no request ID was attached.
func RequestIDFromContext(ctx context.Context) string { return idsFrom(ctx).request }

// CorrelationIDFromContext returns "" when no correlation ID was attached.
func CorrelationIDFromContext(ctx context.Context) string { return idsFrom(ctx).correlation }

// Ctx returns the global logger carrying whatever trace IDs ctx holds.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	ids := idsFrom(ctx)
	if ids.request == "" && ids.correlation == "" {
		return &l
	}
	lc := l.With()
	if ids.correlation != "" {
		lc = lc.Str("correlation_id", ids.correlation)
	}
	if ids.request != "" {
		lc = lc.Str("request_id", ids.request)
	}
	l = lc.Logger()
	return &l
}
