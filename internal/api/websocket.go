package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/elite-status-check/backend/internal/flags"
	"github.com/elite-status-check/backend/internal/models"
)

// WebSocket message types for the status stream protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeStatus    = "status"
	MsgTypePong      = "pong"
)

// WebSocket message structure
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// sendBuffer is the per-subscriber queue length. A subscriber that
// cannot drain it misses updates instead of stalling the broadcaster.
const sendBuffer = 16

type subscriber struct {
	ch   chan []byte
	conn *websocket.Conn
}

// StreamHub fans accepted status updates out to WebSocket subscribers.
type StreamHub struct {
	status   StatusSource
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[string]*subscriber
	closed      bool
	dropped     int64
}

// NewStreamHub creates a hub reading current state from source
func NewStreamHub(source StatusSource) *StreamHub {
	return &StreamHub{
		status: source,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribers returns the number of connected stream clients
func (h *StreamHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns how many messages were discarded for slow subscribers
func (h *StreamHub) Dropped() int64 {
	return atomic.LoadInt64(&h.dropped)
}

// BroadcastSnapshot pushes one accepted snapshot to every subscriber.
// Slow subscribers have the message dropped rather than queued forever.
func (h *StreamHub) BroadcastSnapshot(snap models.StatusSnapshot) {
	msg := marshalMessage(MsgTypeStatus, mustJSON(models.FlagsResponse{
		Flags:      flags.Decode(snap.Flags, snap.Flags2),
		ObservedAt: snap.ObservedAt,
	}))

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, sub := range h.subscribers {
		select {
		case sub.ch <- msg:
		default:
			atomic.AddInt64(&h.dropped, 1)
		}
	}
}

// HandleStatusStream upgrades the connection and streams flag updates
// until the client disconnects
func (h *StreamHub) HandleStatusStream(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	id := uuid.NewString()
	sub := &subscriber{ch: make(chan []byte, sendBuffer), conn: ws}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.subscribers[id] = sub
	active := len(h.subscribers)
	h.mu.Unlock()
	defer h.removeSubscriber(id)

	fmt.Printf("[WebSocket] Subscriber %s connected (%d active)\n", id, active)

	// The writer goroutine owns all writes to the connection
	go func() {
		for msg := range sub.ch {
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	// Welcome plus current state when the cache has one
	h.enqueue(sub, marshalMessage(MsgTypeConnected, nil))
	if parsed, observedAt, err := h.status.ReadParsed(); err == nil {
		h.enqueue(sub, marshalMessage(MsgTypeStatus, mustJSON(models.FlagsResponse{
			Flags:      parsed,
			ObservedAt: observedAt,
		})))
	}

	// Main message loop
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket] Subscriber %s error: %v\n", id, err)
			}
			break
		}

		if msg.Type == MsgTypePing {
			h.enqueue(sub, marshalMessage(MsgTypePong, nil))
		}
	}

	fmt.Printf("[WebSocket] Subscriber %s disconnected\n", id)
	return nil
}

// Close disconnects every subscriber and stops accepting new ones.
func (h *StreamHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.ch)
		sub.conn.Close()
	}
}

func (h *StreamHub) removeSubscriber(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(sub.ch)
	}
}

// enqueue queues one message for a subscriber. Channel sends only happen
// while holding the lock that guards channel close.
func (h *StreamHub) enqueue(sub *subscriber, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case sub.ch <- msg:
	default:
		atomic.AddInt64(&h.dropped, 1)
	}
}

// Helper methods

func marshalMessage(msgType string, payload json.RawMessage) []byte {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return []byte(`{"type":"error"}`)
	}
	return data
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
