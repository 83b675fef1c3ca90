// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/models"
	"github.com/tomtom215/syncify/internal/respond"
	"github.com/tomtom215/syncify/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// normalizer is implemented by request bodies that canonicalize fields
// before validation.
type normalizer interface {
	normalize()
}

// decodeJSON reads a JSON body into dst, normalizes it and validates it. On
// failure the error response has been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large", nil)
			return false
		}
		respond.Error(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", err)
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if apiErr := validateRequest(dst); apiErr != nil {
		respond.ValidationError(w, r, apiErr)
		return false
	}
	return true
}

// validateRequest runs struct validation and converts failures to the
// envelope's error shape.
func validateRequest(v interface{}) *models.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// internalError answers 500 and logs err with the request context.
func internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	respond.Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", message, err)
}
