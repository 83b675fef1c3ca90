// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package realtime

import (
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/syncify/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "json", Output: io.Discard})
}

// fakePeer records every frame it is sent.
type fakePeer struct {
	id     string
	full   bool
	mu     sync.Mutex
	frames []Message
}

func newPeer(id string) *fakePeer {
	return &fakePeer{id: id}
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Send(frame []byte) bool {
	if p.full {
		return false
	}
	var m Message
	if err := json.Unmarshal(frame, &m); err != nil {
		panic(err)
	}
	p.mu.Lock()
	p.frames = append(p.frames, m)
	p.mu.Unlock()
	return true
}

func (p *fakePeer) received() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.frames...)
}

func (p *fakePeer) reset() {
	p.mu.Lock()
	p.frames = nil
	p.mu.Unlock()
}

func (p *fakePeer) last(t *testing.T) Message {
	t.Helper()
	frames := p.received()
	if len(frames) == 0 {
		t.Fatalf("peer %s received nothing", p.id)
	}
	return frames[len(frames)-1]
}

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

// sameJSON compares two documents after decoding.
func sameJSON(t *testing.T, got json.RawMessage, want string) bool {
	t.Helper()
	var g, w interface{}
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("decode %q: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("decode %q: %v", want, err)
	}
	return reflect.DeepEqual(g, w)
}

func presenceOf(t *testing.T, m Message) string {
	t.Helper()
	if m.Type != EventPresence {
		t.Fatalf("type = %q, want presence", m.Type)
	}
	var p PresencePayload
	if err := json.Unmarshal(m.Data, &p); err != nil {
		t.Fatal(err)
	}
	out, _ := json.Marshal(p.Users)
	return string(out)
}

func assertPresence(t *testing.T, m Message, want string) {
	t.Helper()
	got := presenceOf(t, m)
	if !sameJSON(t, json.RawMessage(got), want) {
		t.Errorf("presence users = %s, want %s", got, want)
	}
}

func connect(r *Relay, ids ...string) []*fakePeer {
	peers := make([]*fakePeer, len(ids))
	for i, id := range ids {
		peers[i] = newPeer(id)
		r.Connect(peers[i])
	}
	return peers
}

func TestRelay_Scenario(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "A", "B")
	a, b := peers[0], peers[1]

	r.Join("A", "proj-1", raw(`{"name":"Ann"}`))
	assertPresence(t, a.last(t), `[{"name":"Ann"}]`)

	r.Join("B", "proj-1", raw(`{"name":"Bo"}`))
	assertPresence(t, a.last(t), `[{"name":"Ann"},{"name":"Bo"}]`)
	assertPresence(t, b.last(t), `[{"name":"Ann"},{"name":"Bo"}]`)

	r.Chat("A", "proj-1", raw(`"hi"`))
	for _, p := range []*fakePeer{a, b} {
		m := p.last(t)
		if m.Type != EventChatMessage {
			t.Fatalf("%s got %q, want chatMessage", p.id, m.Type)
		}
		if !sameJSON(t, m.Data, `{"message":"hi","senderSocket":"A"}`) {
			t.Errorf("%s chat data = %s", p.id, m.Data)
		}
	}

	aFrames := len(a.received())
	r.Disconnect("A")
	assertPresence(t, b.last(t), `[{"name":"Bo"}]`)
	if len(a.received()) != aFrames {
		t.Error("disconnected peer received a frame")
	}
}

func TestRelay_RejoinOverwrites(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "A", "B")

	r.Join("A", "room", raw(`{"v":1}`))
	r.Join("B", "room", raw(`{"v":"b"}`))
	r.Join("A", "room", raw(`{"v":2}`))

	// Position of A is kept, value replaced, and each join broadcast.
	assertPresence(t, peers[1].last(t), `[{"v":2},{"v":"b"}]`)
	if got := len(peers[0].received()); got != 3 {
		t.Errorf("A received %d presence frames, want 3", got)
	}
	if got := r.Presence("room"); len(got) != 2 {
		t.Errorf("room has %d entries, want 2", len(got))
	}
}

func TestRelay_DisconnectCleansAllRooms(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "A", "W")
	w := peers[1]

	for _, room := range []string{"X", "Y", "Z"} {
		r.Join("W", room, raw(`"watcher"`))
		r.Join("A", room, raw(`"a"`))
	}
	w.reset()

	r.Disconnect("A")

	frames := w.received()
	if len(frames) != 3 {
		t.Fatalf("watcher received %d frames, want one per room", len(frames))
	}
	for _, m := range frames {
		assertPresence(t, m, `["watcher"]`)
	}
	for _, room := range []string{"X", "Y", "Z"} {
		if got := r.Presence(room); len(got) != 1 {
			t.Errorf("room %s still has %d entries", room, len(got))
		}
	}

	// Terminal: further events from A are ignored.
	r.Join("A", "X", raw(`"again"`))
	if got := r.Presence("X"); len(got) != 1 {
		t.Errorf("join after disconnect accepted: %s", got)
	}
}

func TestRelay_Leave(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "A", "B")
	a, b := peers[0], peers[1]

	r.Join("A", "room", raw(`"a"`))
	r.Join("B", "room", raw(`"b"`))
	a.reset()

	r.Leave("A", "room")
	assertPresence(t, b.last(t), `["b"]`)
	if len(a.received()) != 0 {
		t.Error("leaver still subscribed to room")
	}

	// Unknown room and repeated leave are no-ops.
	r.Leave("A", "nowhere")
	r.Leave("A", "room")
	assertPresence(t, b.last(t), `["b"]`)

	// A room emptied by leave stays allocated.
	r.Leave("B", "room")
	snap := r.Snapshot()
	if len(snap) != 1 || snap[0].RoomID != "room" || snap[0].Members != 0 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestRelay_PayloadOpacity(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "A", "B")
	r.Join("A", "p", raw(`{}`))
	r.Join("B", "p", raw(`{}`))

	patch := `{"ops":[{"op":"move","from":"/cards/1","path":"/cards/0"}],"nested":{"n":1.5,"s":"é","nil":null}}`
	r.BoardChange("A", "p", raw(patch))

	m := peers[1].last(t)
	if m.Type != EventBoardChange {
		t.Fatalf("type = %q", m.Type)
	}
	var got BoardChangePayload
	if err := json.Unmarshal(m.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Sender != "A" {
		t.Errorf("sender = %q", got.Sender)
	}
	if !sameJSON(t, got.Patch, patch) {
		t.Errorf("patch = %s, want %s", got.Patch, patch)
	}

	var fields map[string]json.RawMessage
	_ = json.Unmarshal(m.Data, &fields)
	if len(fields) != 2 {
		t.Errorf("boardChange carries extra fields: %s", m.Data)
	}
}

func TestRelay_MissingFieldsPropagateAsNull(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "A")

	r.Join("A", "p", nil)
	assertPresence(t, peers[0].last(t), `[null]`)

	r.Chat("A", "p", nil)
	if !sameJSON(t, peers[0].last(t).Data, `{"message":null,"senderSocket":"A"}`) {
		t.Errorf("chat data = %s", peers[0].last(t).Data)
	}
}

func TestRelay_EmptyRoomBroadcastIsNoop(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "A")

	r.Chat("A", "ghost", raw(`"hi"`))
	r.BoardChange("A", "ghost", raw(`{}`))
	if len(peers[0].received()) != 0 {
		t.Error("sender not in room received a frame")
	}
}

func TestRelay_FullPeerDoesNotBlockRoom(t *testing.T) {
	t.Parallel()

	r := NewRelay()
	peers := connect(r, "slow", "B")
	peers[0].full = true

	r.Join("slow", "p", raw(`"s"`))
	r.Join("B", "p", raw(`"b"`))
	assertPresence(t, peers[1].last(t), `["s","b"]`)
}

func TestRelay_IndependentInstances(t *testing.T) {
	t.Parallel()

	r1, r2 := NewRelay(), NewRelay()
	connect(r1, "A")
	connect(r2, "A")
	r1.Join("A", "shared", raw(`1`))

	if got := r2.Presence("shared"); got != nil {
		t.Errorf("second relay sees %s", got)
	}
}
