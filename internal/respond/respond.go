// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

// Package respond writes the standard APIResponse envelope. It is shared by
// the guard middleware and the REST handlers so that every failure carries
// the same shape and a stable error code.
package respond

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/models"
)

// JSON writes a success envelope around data.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	write(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadata(r),
	})
}

// Error writes an error envelope. When err is non-nil it is logged with the
// request's context fields; err is never exposed to the client.
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Str("code", code).
			Str("path", logging.SanitizeValue(r.URL.Path)).
			Str("error", logging.SanitizeValue(err.Error())).
			Msg("API error")
	}

	write(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: metadata(r),
		Error:    &models.APIError{Code: code, Message: message},
	})
}

// ValidationError writes a 400 carrying field-level details.
func ValidationError(w http.ResponseWriter, r *http.Request, apiErr *models.APIError) {
	write(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: metadata(r),
		Error:    apiErr,
	})
}

func metadata(r *http.Request) models.Metadata {
	md := models.Metadata{Timestamp: time.Now().UTC()}
	if r != nil {
		md.RequestID = logging.RequestIDFromContext(r.Context())
	}
	return md
}

func write(w http.ResponseWriter, status int, resp *models.APIResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}
