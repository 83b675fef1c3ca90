// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package realtime

import (
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/metrics"
)

// Peer is one connection as seen by the Relay.
type Peer interface {
	ID() string
	// Send queues a frame without blocking and reports whether it was queued.
	Send(frame []byte) bool
}

// room holds presence entries in first-insertion order.
// Every connection with an entry is also a broadcast subscriber.
type room struct {
	order []string
	users map[string]json.RawMessage
}

func newRoom() *room {
	return &room{users: make(map[string]json.RawMessage)}
}

func (rm *room) put(connID string, user json.RawMessage) {
	if _, ok := rm.users[connID]; !ok {
		rm.order = append(rm.order, connID)
	}
	rm.users[connID] = user
}

func (rm *room) remove(connID string) {
	if _, ok := rm.users[connID]; !ok {
		return
	}
	delete(rm.users, connID)
	for i, id := range rm.order {
		if id == connID {
			rm.order = append(rm.order[:i], rm.order[i+1:]...)
			break
		}
	}
}

func (rm *room) presence() PresencePayload {
	users := make([]json.RawMessage, 0, len(rm.order))
	for _, id := range rm.order {
		users = append(users, rm.users[id])
	}
	return PresencePayload{Users: users}
}

// Relay owns the room table. Mutations are serialized by mu; the Hub
// additionally drives all mutations from one goroutine.
type Relay struct {
	mu    sync.RWMutex
	peers map[string]Peer
	rooms map[string]*room
	// joined lists every room a connection has ever joined, in join order.
	joined map[string][]string
}

// NewRelay creates an empty Relay.
func NewRelay() *Relay {
	return &Relay{
		peers:  make(map[string]Peer),
		rooms:  make(map[string]*room),
		joined: make(map[string][]string),
	}
}

// Connect registers a peer. Re-registering an id replaces the peer.
func (r *Relay) Connect(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p.ID()] = p
	metrics.RelayConnections.Set(float64(len(r.peers)))
}

// Join inserts or overwrites the connection's entry in roomID and
// broadcasts the room's presence to every member, the joiner included.
func (r *Relay) Join(connID, roomID string, user json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[connID]; !ok {
		return
	}

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = newRoom()
		r.rooms[roomID] = rm
		metrics.RelayRooms.Set(float64(len(r.rooms)))
	}
	rm.put(connID, opaque(user))
	r.markJoined(connID, roomID)

	r.broadcastPresence(roomID)
}

// Leave removes the connection's entry from roomID, if any, and broadcasts
// the remaining presence. An unknown room broadcasts an empty list.
func (r *Relay) Leave(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[connID]; !ok {
		return
	}
	if rm, ok := r.rooms[roomID]; ok {
		rm.remove(connID)
	}
	r.broadcastPresence(roomID)
}

// Chat relays message verbatim to roomID with the sender's id attached.
func (r *Relay) Chat(connID, roomID string, message json.RawMessage) {
	r.relay(connID, roomID, EventChatMessage, ChatPayload{Message: opaque(message), SenderSocket: connID})
}

// BoardChange relays patch verbatim to roomID with the sender's id attached.
func (r *Relay) BoardChange(connID, roomID string, patch json.RawMessage) {
	r.relay(connID, roomID, EventBoardChange, BoardChangePayload{Patch: opaque(patch), Sender: connID})
}

func (r *Relay) relay(connID, roomID, eventType string, payload interface{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.peers[connID]; !ok {
		return
	}
	r.broadcast(roomID, eventType, payload)
}

// Disconnect removes the connection from every room it ever joined,
// broadcasting presence once per room, and forgets the peer.
func (r *Relay) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[connID]; !ok {
		return
	}
	delete(r.peers, connID)
	metrics.RelayConnections.Set(float64(len(r.peers)))

	rooms := r.joined[connID]
	delete(r.joined, connID)
	for _, roomID := range rooms {
		if rm, ok := r.rooms[roomID]; ok {
			rm.remove(connID)
		}
		r.broadcastPresence(roomID)
	}
}

// RoomSnapshot describes one room's current presence.
type RoomSnapshot struct {
	RoomID  string            `json:"room_id"`
	Members int               `json:"members"`
	Users   []json.RawMessage `json:"users"`
}

// Snapshot returns every room, including empty ones, sorted by id.
func (r *Relay) Snapshot() []RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RoomSnapshot, 0, len(r.rooms))
	for id, rm := range r.rooms {
		out = append(out, RoomSnapshot{RoomID: id, Members: len(rm.order), Users: rm.presence().Users})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Presence returns the current users of roomID, or nil for an unknown room.
func (r *Relay) Presence(roomID string) []json.RawMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rm, ok := r.rooms[roomID]; ok {
		return rm.presence().Users
	}
	return nil
}

// ConnectionCount returns the number of connected peers.
func (r *Relay) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}

// markJoined must be called with mu held.
func (r *Relay) markJoined(connID, roomID string) {
	for _, id := range r.joined[connID] {
		if id == roomID {
			return
		}
	}
	r.joined[connID] = append(r.joined[connID], roomID)
}

// broadcastPresence must be called with mu held.
func (r *Relay) broadcastPresence(roomID string) {
	payload := PresencePayload{Users: []json.RawMessage{}}
	if rm, ok := r.rooms[roomID]; ok {
		payload = rm.presence()
	}
	r.broadcast(roomID, EventPresence, payload)
}

// broadcast sends one frame to every member of roomID in entry order.
// Must be called with mu held for reading.
func (r *Relay) broadcast(roomID, eventType string, payload interface{}) {
	rm, ok := r.rooms[roomID]
	if !ok || len(rm.order) == 0 {
		return
	}

	frame, err := encodeFrame(eventType, payload)
	if err != nil {
		logging.Error().Err(err).Str("event", eventType).Msg("Failed to encode realtime frame")
		return
	}

	for _, id := range rm.order {
		p, ok := r.peers[id]
		if !ok {
			continue
		}
		if !p.Send(frame) {
			metrics.RelayDropped.Inc()
			logging.Debug().Str("conn_id", id).Str("event", eventType).Msg("Send buffer full, frame dropped")
		}
	}
}
