// Package ws implements the WebSocket adapter that streams gateway
// events (sync runs, orchestrator state changes) to connected clients.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// Message is the envelope every event on the feed travels in. Time is
// stamped by the hub at broadcast when the producer left it zero.
type Message struct {
	Type    string          `json:"type"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload"`
}

// sendQueueSize bounds the per-client outbound queue. Sync runs emit a
// small burst of events, so a short queue absorbs normal traffic while a
// stalled client starts shedding instead of blocking the gateway.
const sendQueueSize = 32

// conn is one subscribed client: its socket, its outbound queue, and the
// cancel that tears down its writer and reader.
type conn struct {
	ws     *websocket.Conn
	sendq  chan []byte
	cancel context.CancelFunc
}

// Hub fans gateway events out to every connected client. Delivery is
// best effort per client: a client that cannot keep up loses events
// rather than backpressuring the sync path.
type Hub struct {
	mu      sync.RWMutex
	conns   map[*conn]struct{}
	dropped atomic.Int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[*conn]struct{}),
	}
}

// HandleWS upgrades the request to a WebSocket subscription on the event
// feed. The feed is one-way; inbound frames are read only to notice
// disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{
		ws:     sock,
		sendq:  make(chan []byte, sendQueueSize),
		cancel: cancel,
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("websocket connected", "remote", r.RemoteAddr)

	go h.writeLoop(ctx, c)
	go func() {
		defer func() {
			h.remove(c)
			_ = sock.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := sock.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// writeLoop drains the connection's queue onto the socket until the
// connection dies or is removed.
func (h *Hub) writeLoop(ctx context.Context, c *conn) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.sendq:
			if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
				slog.Debug("websocket write failed", "error", err)
				h.remove(c)
				return
			}
		}
	}
}

// Broadcast enqueues a message for every connected client. Clients with
// a full queue are skipped and the event counted as dropped.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	if msg.Time.IsZero() {
		msg.Time = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("websocket marshal failed", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		select {
		case c.sendq <- data:
		case <-ctx.Done():
			return
		default:
			h.dropped.Add(1)
		}
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Dropped returns how many events have been shed on full client queues
// since the hub was created.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		slog.Info("websocket disconnected")
	}
}
