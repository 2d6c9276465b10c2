package signaling

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alaminislam-stack/wash2gather/internal/relay"
	"github.com/Alaminislam-stack/wash2gather/internal/server"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func next(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case msg, ok := <-c.Incoming():
		if !ok {
			t.Fatal("incoming closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestClient_JoinThroughRelay(t *testing.T) {
	hub := relay.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(server.NewRouter(hub, &server.Config{Port: server.DefaultPort}))
	defer srv.Close()

	a := NewClient(wsURL(srv))
	if err := a.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer a.Close()

	b := NewClient(wsURL(srv))
	if err := b.Connect(ctx); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer b.Close()

	a.Send(NewJoin("room"))
	if msg := next(t, a); msg.Type != TypeCreated {
		t.Fatalf("expected created, got %s", msg.Type)
	}

	b.Send(NewJoin("room"))
	if msg := next(t, b); msg.Type != TypeJoined {
		t.Fatalf("expected joined, got %s", msg.Type)
	}

	ev, err := Event(next(t, b))
	if err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	if ev == nil {
		t.Fatal("expected ready event")
	}
	if msg := next(t, a); msg.Type != TypeReady {
		t.Fatalf("expected ready, got %s", msg.Type)
	}

	offer, _ := NewRelayed(TypeOffer, "room", map[string]string{"type": "offer", "sdp": "x"})
	a.Send(offer)
	if msg := next(t, b); msg.Type != TypeOffer || string(msg.Payload) != `{"sdp":"x","type":"offer"}` {
		t.Errorf("unexpected relayed offer %s %s", msg.Type, msg.Payload)
	}
}

func TestClient_ReconnectsAfterDrop(t *testing.T) {
	var connections atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if connections.Add(1) == 1 {
			// Drop the first connection straight away.
			conn.Close()
			return
		}
		conn.WriteJSON(Message{Type: TypeCreated, RoomID: "room"})
		go func() {
			defer conn.Close()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), WithReconnect(3, 10*time.Millisecond))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	if msg := next(t, c); msg.Type != TypeReconnected {
		t.Fatalf("expected reconnected, got %s", msg.Type)
	}
	if msg := next(t, c); msg.Type != TypeCreated {
		t.Fatalf("expected created after reconnect, got %s", msg.Type)
	}
}

func TestClient_GivesUpAfterMaxAttempts(t *testing.T) {
	var connections atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if connections.Add(1) > 1 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	c := NewClient(wsURL(srv), WithReconnect(2, 5*time.Millisecond))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	if msg := next(t, c); msg.Type != TypeDisconnected {
		t.Fatalf("expected disconnected, got %s", msg.Type)
	}
	select {
	case _, ok := <-c.Incoming():
		if ok {
			t.Error("expected incoming to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("incoming not closed")
	}
}

func TestClient_SendBeforeConnect(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws")
	if err := c.Send(NewJoin("room")); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	c.Close()
}
