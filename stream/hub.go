// Package stream broadcasts simulation frames to websocket clients.
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/feralcats/sim"
	"github.com/pthm-cable/feralcats/telemetry"
)

// Frame is the per-tick message sent to every client.
type Frame struct {
	Type    string                 `json:"type"`
	Tick    int                    `json:"tick"`
	Agents  []sim.AgentView        `json:"agents"`
	Fields  sim.FieldView          `json:"fields"`
	Metrics telemetry.TickSnapshot `json:"metrics"`
}

// Hello is sent once when a client connects.
type Hello struct {
	Type   string `json:"type"`
	Width  int    `json:"w"`
	Height int    `json:"h"`
	Seed   int64  `json:"seed"`
}

// NewFrame captures the current state of s.
func NewFrame(s *sim.Simulation) Frame {
	return Frame{
		Type:    "frame",
		Tick:    s.Tick(),
		Agents:  s.AgentSnapshot(),
		Fields:  s.FieldSnapshot(),
		Metrics: s.LatestMetrics(),
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks connected clients and fans frames out to them. Publish never
// blocks the caller; if the broadcaster falls behind, older frames are
// dropped in favour of the newest.
type Hub struct {
	hello Hello

	mu      sync.Mutex
	clients map[*client]struct{}

	frames chan Frame
}

// NewHub creates a hub that greets new clients with the world size and seed.
func NewHub(width, height int, seed int64) *Hub {
	return &Hub{
		hello:   Hello{Type: "config", Width: width, Height: height, Seed: seed},
		clients: make(map[*client]struct{}),
		frames:  make(chan Frame, 1),
	}
}

// Publish queues f for broadcast, replacing any frame not yet sent.
func (h *Hub) Publish(f Frame) {
	for {
		select {
		case h.frames <- f:
			return
		default:
		}
		select {
		case <-h.frames:
		default:
		}
	}
}

// Run broadcasts published frames until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case f := <-h.frames:
			h.broadcast(f)
		}
	}
}

// NumClients returns the number of connected clients.
func (h *Hub) NumClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(v any) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		if err := c.send(v); err != nil {
			slog.Warn("stream client send failed", "error", err)
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()
	for _, c := range list {
		h.drop(c)
	}
}

// ServeHTTP upgrades the request to a websocket and registers the client.
// Incoming messages are read and discarded until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}
	if err := c.send(h.hello); err != nil {
		conn.Close()
		return
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
}
