// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package realtime

import (
	"github.com/goccy/go-json"
)

// Event names carried in the envelope's type field.
const (
	EventJoinRoom    = "joinRoom"
	EventLeaveRoom   = "leaveRoom"
	EventChatMessage = "chatMessage"
	EventBoardChange = "boardChange"
	EventPresence    = "presence"
	EventPing        = "ping"
	EventPong        = "pong"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type joinRoomData struct {
	RoomID string          `json:"roomId"`
	User   json.RawMessage `json:"user"`
}

type leaveRoomData struct {
	RoomID string `json:"roomId"`
}

type chatMessageData struct {
	ProjectID string          `json:"projectId"`
	Message   json.RawMessage `json:"message"`
}

type boardChangeData struct {
	ProjectID string          `json:"projectId"`
	Patch     json.RawMessage `json:"patch"`
}

// PresencePayload is the data of a presence event.
type PresencePayload struct {
	Users []json.RawMessage `json:"users"`
}

// ChatPayload is the data of an outbound chatMessage event.
type ChatPayload struct {
	Message      json.RawMessage `json:"message"`
	SenderSocket string          `json:"senderSocket"`
}

// BoardChangePayload is the data of an outbound boardChange event.
type BoardChangePayload struct {
	Patch  json.RawMessage `json:"patch"`
	Sender string          `json:"sender"`
}

var jsonNull = json.RawMessage("null")

// opaque returns v unchanged, or JSON null when the field was absent.
func opaque(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return jsonNull
	}
	return v
}

func encodeFrame(eventType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: eventType, Data: raw})
}
