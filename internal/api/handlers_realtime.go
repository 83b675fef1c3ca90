// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/realtime"
	"github.com/tomtom215/syncify/internal/respond"
)

// WebSocket upgrades the request and hands the connection to the relay hub.
//
// The upgrade is not authenticated: any peer may connect, join any room and
// broadcast into it. Only the Origin header is checked.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respond.Error(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Realtime service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	if _, err := h.hub.Attach(r.Context(), conn, h.clientConfig()); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Realtime hub rejected connection")
	}
}

// RealtimeRooms lists every room with its member count and presence.
func (h *Handler) RealtimeRooms(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respond.JSON(w, r, http.StatusOK, []realtime.RoomSnapshot{})
		return
	}
	respond.JSON(w, r, http.StatusOK, h.hub.Relay().Snapshot())
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts requests without an Origin (non-browser
// clients) and browser requests from a configured CORS origin.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Ctx(r.Context()).Warn().Str("origin", logging.SanitizeValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

func (h *Handler) clientConfig() realtime.ClientConfig {
	rc := h.config.Realtime
	return realtime.ClientConfig{
		SendBuffer:     rc.SendBuffer,
		MaxMessageSize: rc.MaxMessageSize,
		PongWait:       rc.PongWait,
		WriteWait:      rc.WriteWait,
		FrameRate:      rc.FrameRate,
		FrameBurst:     rc.FrameBurst,
	}
}
