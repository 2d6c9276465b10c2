package signaling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alaminislam-stack/wash2gather/internal/dns"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// DefaultReconnectAttempts bounds automatic reconnection.
	DefaultReconnectAttempts = 10

	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

var (
	ErrClosed    = errors.New("signaling client closed")
	ErrQueueFull = errors.New("signaling send queue full")
)

// Client manages the WebSocket connection to the relay. When the connection
// drops it reconnects a bounded number of times and reports it with a
// TypeReconnected message; when it gives up it reports TypeDisconnected and
// closes Incoming.
type Client struct {
	serverURL string
	dialer    *websocket.Dialer

	maxAttempts int
	backoff     time.Duration

	incoming chan *Message
	outgoing chan *Message

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	conn *websocket.Conn
}

// Option configures a Client.
type Option func(*Client)

// WithReconnect sets the attempt bound and the first backoff delay.
func WithReconnect(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.backoff = backoff
	}
}

// NewClient creates a new signaling client
func NewClient(serverURL string, opts ...Option) *Client {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	// Resolve with the public DNS fallback.
	dialer.NetDialContext = dns.DialContext

	c := &Client{
		serverURL:   serverURL,
		dialer:      &dialer,
		maxAttempts: DefaultReconnectAttempts,
		backoff:     initialBackoff,
		incoming:    make(chan *Message, 32),
		outgoing:    make(chan *Message, 32),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the relay once and starts the pumps. Later drops are
// handled by reconnecting.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	go c.run(conn)
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.serverURL, err)
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return conn, nil
}

// run serves one connection at a time until the context ends or
// reconnection gives up.
func (c *Client) run(conn *websocket.Conn) {
	defer close(c.incoming)

	for {
		err := c.serve(conn)
		if c.ctx.Err() != nil {
			return
		}
		slog.Warn("signaling connection lost", "err", err)

		conn = c.reconnect()
		if conn == nil {
			c.emit(&Message{Type: TypeDisconnected})
			return
		}
		c.emit(&Message{Type: TypeReconnected})
	}
}

// serve pumps one connection and returns the read error that ended it.
func (c *Client) serve(conn *websocket.Conn) error {
	done := make(chan struct{})
	go c.writePump(conn, done)

	err := c.readPump(conn)
	close(done)
	conn.Close()
	return err
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		slog.Debug("signaling message received", "type", msg.Type)
		if !c.emit(&msg) {
			return ErrClosed
		}
	}
}

// writePump writes messages to the WebSocket connection and sends periodic pings.
func (c *Client) writePump(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.outgoing:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				slog.Warn("signaling write failed", "type", msg.Type, "err", err)
				conn.Close()
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}

		case <-c.ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
			return

		case <-done:
			return
		}
	}
}

// reconnect retries with exponential backoff. It returns nil when the
// attempts are exhausted or the client is closed.
func (c *Client) reconnect() *websocket.Conn {
	backoff := c.backoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-c.ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		slog.Info("reconnecting to signaling server", "attempt", attempt, "max", c.maxAttempts)
		conn, err := c.dial(c.ctx)
		if err == nil {
			slog.Info("reconnected to signaling server", "attempt", attempt)
			return conn
		}
		slog.Warn("reconnect failed", "attempt", attempt, "err", err)

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	slog.Error("giving up on signaling server", "attempts", c.maxAttempts)
	return nil
}

func (c *Client) emit(msg *Message) bool {
	select {
	case c.incoming <- msg:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// Send queues msg for the relay without blocking.
func (c *Client) Send(msg *Message) error {
	if c.ctx == nil || c.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case c.outgoing <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Incoming returns the channel for receiving messages. It is closed when
// the client stops.
func (c *Client) Incoming() <-chan *Message {
	return c.incoming
}

// Close closes the WebSocket connection and stops reconnecting.
func (c *Client) Close() {
	if c.cancel == nil {
		return
	}
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		// Unblocks the read pump.
		c.conn.Close()
	}
}
