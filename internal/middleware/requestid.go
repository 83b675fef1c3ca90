// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package middleware holds HTTP middleware shared by every route.
package middleware

import (
	"context"
	"net/http"

	"github.com/tomtom215/syncify/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID tags every request with an ID. An upstream X-Request-ID is kept
// when it is short and made of token characters, otherwise a UUID replaces
// it. The ID is echoed back and, together with a fresh correlation ID,
// attached to the logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !acceptableRequestID(id) {
			id = logging.GenerateRequestID()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logging.ContextWithNewCorrelationID(logging.ContextWithRequestID(r.Context(), id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the ID RequestID attached, or "".
func GetRequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

// acceptableRequestID keeps header values out of logs when they could
// smuggle control characters or JSON-breaking bytes.
func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
