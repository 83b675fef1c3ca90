// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/syncify/internal/respond"
)

// HealthLive answers 200 while the process is up, regardless of backends.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 200 only when the backing store is reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil || h.pinger.Ping(r.Context()) != nil {
		respond.Error(w, r, http.StatusServiceUnavailable, "NOT_READY", "Store unavailable", nil)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"store_connected":  true,
		"realtime_clients": h.realtimeClients(),
		"uptime":           time.Since(h.startTime).Seconds(),
	})
}

func (h *Handler) realtimeClients() int {
	if h.hub == nil {
		return 0
	}
	return h.hub.ClientCount()
}
