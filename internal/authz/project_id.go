// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package authz

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// maxProjectIDBodyBytes bounds how much of a request body is inspected.
const maxProjectIDBodyBytes = 1 << 20

// ResolveProjectID finds the project id named param in, by precedence, the
// route path, a JSON body field, then the query string. The first non-empty
// value wins. The body is restored for downstream handlers.
func ResolveProjectID(r *http.Request, param string) string {
	if id := chi.URLParam(r, param); id != "" {
		return id
	}
	if id := projectIDFromBody(r, param); id != "" {
		return id
	}
	return r.URL.Query().Get(param)
}

type replayBody struct {
	io.Reader
	io.Closer
}

func projectIDFromBody(r *http.Request, param string) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return ""
	}

	orig := r.Body
	data, err := io.ReadAll(io.LimitReader(orig, maxProjectIDBodyBytes))
	// Downstream handlers see the whole body: the inspected prefix followed
	// by whatever was not read. Closing it closes the original.
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(data), orig), Closer: orig}
	if err != nil || len(data) == 0 {
		return ""
	}

	var fields map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return ""
	}

	switch v := fields[param].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
