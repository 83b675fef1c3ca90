// Syncify - Collaborative Project Workspace Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/syncify

package realtime

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/syncify/internal/logging"
	"github.com/tomtom215/syncify/internal/metrics"
)

// ClientConfig tunes per-connection pumps.
type ClientConfig struct {
	SendBuffer     int
	MaxMessageSize int64
	PongWait       time.Duration
	WriteWait      time.Duration

	// FrameRate limits inbound frames per second. Frames over the limit are
	// discarded, not queued. Zero means unlimited.
	FrameRate  float64
	FrameBurst int
}

// DefaultClientConfig returns the defaults used when a field is zero.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SendBuffer:     256,
		MaxMessageSize: 512 * 1024,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
	}
}

func (c ClientConfig) withDefaults() ClientConfig {
	d := DefaultClientConfig()
	if c.SendBuffer <= 0 {
		c.SendBuffer = d.SendBuffer
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.FrameRate > 0 && c.FrameBurst <= 0 {
		c.FrameBurst = max(1, int(c.FrameRate))
	}
	return c
}

// Client pumps frames between one websocket connection and the hub.
type Client struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	cfg      ClientConfig
	send     chan []byte
	released chan struct{}
	inbound  *rate.Limiter // nil when unlimited
}

// NewClient wraps conn with a fresh connection id.
func NewClient(hub *Hub, conn *websocket.Conn, cfg ClientConfig) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		id:       uuid.NewString(),
		hub:      hub,
		conn:     conn,
		cfg:      cfg,
		send:     make(chan []byte, cfg.SendBuffer),
		released: make(chan struct{}),
	}
	if cfg.FrameRate > 0 {
		c.inbound = rate.NewLimiter(rate.Limit(cfg.FrameRate), cfg.FrameBurst)
	}
	return c
}

// admit reports whether the next inbound frame is within the rate limit.
func (c *Client) admit() bool {
	if c.inbound == nil || c.inbound.Allow() {
		return true
	}
	metrics.RelayThrottled.Inc()
	return false
}

// ID returns the connection id echoed as senderSocket.
func (c *Client) ID() string {
	return c.id
}

// Send queues a frame. Called only from the hub goroutine.
func (c *Client) Send(frame []byte) bool {
	select {
	case <-c.released:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Start launches the pumps. The client must already be registered.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.submit(c, hubEvent{kind: kindUnregister, client: c})
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		logging.Error().Err(err).Str("conn_id", c.id).Msg("Failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Str("conn_id", c.id).Msg("Unexpected websocket close")
			}
			return
		}
		if !c.admit() {
			logging.Debug().Str("conn_id", c.id).Msg("Discarding realtime frame over rate limit")
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Debug().Str("conn_id", c.id).Msg("Skipping malformed realtime frame")
			continue
		}
		if !c.hub.submit(c, hubEvent{kind: kindFrame, client: c, msg: msg}) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker((c.cfg.PongWait * 9) / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logging.Debug().Err(err).Str("conn_id", c.id).Msg("Websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
