// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

/*
Package realtime implements room presence and verbatim fan-out of chat and
board-change events over websocket connections.

The Relay owns rooms and presence. The Hub serializes connection lifecycle
and inbound frames onto one goroutine and runs under the supervisor tree.
Each Client pumps frames between its websocket and the Hub, dropping
inbound frames above its rate limit.

# Events

	joinRoom     enter a room with an opaque user descriptor
	leaveRoom    leave a room
	chatMessage  relayed to the room with the sender's connection id
	boardChange  relayed to the room with the sender's connection id
	presence     sent to a room whenever its member list changes
	ping, pong   keepalive

Payloads are forwarded without inspection.

Connections are not authenticated: any client may join any room with any
user descriptor. REST authorization does not extend to realtime events.
*/
package realtime
