// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package realtime

import (
	"context"
	"errors"
	"sort"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// ErrHubStopped is returned by Register when the hub is not accepting clients.
var ErrHubStopped = errors.New("realtime hub stopped")

type eventKind int

const (
	kindRegister eventKind = iota
	kindFrame
	kindUnregister
)

type hubEvent struct {
	kind   eventKind
	client *Client
	msg    Message
}

// Hub runs the relay's event loop. Registration, inbound frames and
// disconnects of every client flow through one channel, so events of one
// connection are applied in arrival order.
type Hub struct {
	relay   *Relay
	events  chan hubEvent
	clients map[string]*Client
}

// NewHub creates a hub driving relay. queue bounds pending inbound events.
func NewHub(relay *Relay, queue int) *Hub {
	if queue <= 0 {
		queue = 1024
	}
	return &Hub{
		relay:   relay,
		events:  make(chan hubEvent, queue),
		clients: make(map[string]*Client),
	}
}

// Relay returns the hub's relay state.
func (h *Hub) Relay() *Relay {
	return h.relay
}

// Register queues a new client. It blocks until queued or ctx ends.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	select {
	case h.events <- hubEvent{kind: kindRegister, client: c}:
		return nil
	case <-ctx.Done():
		return ErrHubStopped
	}
}

func (h *Hub) submit(c *Client, ev hubEvent) bool {
	select {
	case h.events <- ev:
		return true
	case <-c.released:
		return false
	}
}

// RunWithContext processes events until ctx is canceled, then releases
// every client. Designed to run under suture supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Shutdown takes priority over pending events.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case ev := <-h.events:
			h.handle(ev)
		}
	}
}

func (h *Hub) handle(ev hubEvent) {
	c := ev.client
	switch ev.kind {
	case kindRegister:
		h.clients[c.id] = c
		h.relay.Connect(c)
		logging.Info().Str("conn_id", c.id).Int("total_clients", len(h.clients)).Msg("Realtime client connected")

	case kindUnregister:
		if _, ok := h.clients[c.id]; !ok {
			return
		}
		h.relay.Disconnect(c.id)
		h.release(c)
		logging.Info().Str("conn_id", c.id).Int("total_clients", len(h.clients)).Msg("Realtime client disconnected")

	case kindFrame:
		if _, ok := h.clients[c.id]; !ok {
			return
		}
		h.dispatch(c, ev.msg)
	}
}

// dispatch applies one inbound frame. Payloads that fail to decode are
// treated as empty, so absent fields propagate as null.
func (h *Hub) dispatch(c *Client, msg Message) {
	switch msg.Type {
	case EventJoinRoom, EventLeaveRoom, EventChatMessage, EventBoardChange, EventPing:
		metrics.RecordRelayEvent(msg.Type)
	default:
		metrics.RecordRelayEvent("unknown")
	}

	switch msg.Type {
	case EventJoinRoom:
		var d joinRoomData
		decodeLenient(msg.Data, &d)
		logging.Debug().Str("conn_id", c.id).Str("room_id", d.RoomID).Msg("joinRoom")
		h.relay.Join(c.id, d.RoomID, d.User)

	case EventLeaveRoom:
		var d leaveRoomData
		decodeLenient(msg.Data, &d)
		logging.Debug().Str("conn_id", c.id).Str("room_id", d.RoomID).Msg("leaveRoom")
		h.relay.Leave(c.id, d.RoomID)

	case EventChatMessage:
		var d chatMessageData
		decodeLenient(msg.Data, &d)
		h.relay.Chat(c.id, d.ProjectID, d.Message)

	case EventBoardChange:
		var d boardChangeData
		decodeLenient(msg.Data, &d)
		h.relay.BoardChange(c.id, d.ProjectID, d.Patch)

	case EventPing:
		frame, _ := json.Marshal(Message{Type: EventPong})
		c.Send(frame)

	default:
		logging.Debug().Str("conn_id", c.id).Str("type", logging.SanitizeValue(msg.Type)).Msg("Ignoring unknown realtime event")
	}
}

func decodeLenient(data json.RawMessage, v interface{}) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, v)
}

// release closes the client's send queue. Only the hub goroutine calls it.
func (h *Hub) release(c *Client) {
	delete(h.clients, c.id)
	close(c.released)
	close(c.send)
}

func (h *Hub) shutdown(ctx context.Context) {
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		h.relay.Disconnect(id)
		h.release(h.clients[id])
	}

	reason := ShutdownReasonContextCanceled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = ShutdownReasonContextDeadline
	}
	logging.Info().
		Str("component", "realtime-hub").
		Str("reason", string(reason)).
		Int("clients_closed", len(ids)).
		Msg("Realtime hub stopped")
}

// ClientCount returns the number of connections known to the relay.
func (h *Hub) ClientCount() int {
	return h.relay.ConnectionCount()
}

// Attach registers an upgraded connection and starts its pumps.
// On failure the connection is closed.
func (h *Hub) Attach(ctx context.Context, conn *websocket.Conn, cfg ClientConfig) (*Client, error) {
	c := NewClient(h, conn, cfg)
	if err := h.Register(ctx, c); err != nil {
		_ = conn.Close()
		return nil, err
	}
	c.Start()
	return c, nil
}
