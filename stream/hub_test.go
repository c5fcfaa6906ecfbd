package stream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/feralcats/config"
	"github.com/pthm-cable/feralcats/sim"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.NumClients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, h.NumClients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsFrames(t *testing.T) {
	s, err := sim.New(config.Default().WithSeed(1))
	if err != nil {
		t.Fatalf("sim.New failed: %v", err)
	}

	hub := NewHub(25, 25, s.Seed())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("reading hello: %v", err)
	}
	if hello.Type != "config" || hello.Width != 25 || hello.Seed != 1 {
		t.Errorf("unexpected hello %+v", hello)
	}

	waitClients(t, hub, 1)
	s.Step()
	hub.Publish(NewFrame(s))

	var got struct {
		Type    string `json:"type"`
		Tick    int    `json:"tick"`
		Agents  []map[string]any
		Metrics struct {
			Cats int `json:"cats"`
			Prey int `json:"prey"`
		} `json:"metrics"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("reading frame: %v", err)
	}
	if got.Type != "frame" || got.Tick != 1 {
		t.Errorf("unexpected frame header %q tick %d", got.Type, got.Tick)
	}
	if len(got.Agents) != got.Metrics.Cats+got.Metrics.Prey {
		t.Errorf("frame has %d agents, metrics say %d", len(got.Agents), got.Metrics.Cats+got.Metrics.Prey)
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub(4, 4, 0)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)

	conn.Close()
	waitClients(t, hub, 0)
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(1, 1, 0)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(Frame{Tick: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running broadcaster")
	}

	if f := <-hub.frames; f.Tick != 99 {
		t.Errorf("expected newest frame 99, got %d", f.Tick)
	}
}
