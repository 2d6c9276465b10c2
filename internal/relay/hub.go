package relay

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Hub is the central brain of the relay server.
// It manages all active rooms and clients from a single goroutine.
type Hub struct {
	// Rooms maps room IDs to Room instances.
	Rooms map[string]*Room

	// clients tracks every registered connection.
	clients map[*Client]struct{}

	// Register is a channel for registering new clients.
	Register chan *Client

	// Unregister is a channel for unregistering clients.
	Unregister chan *Client

	// Inbound carries every message read from a client.
	Inbound chan *Message

	stats chan chan Stats

	// done is closed when Run returns.
	done chan struct{}
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]*Room),
		clients:    make(map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *Message),
		stats:      make(chan chan Stats),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main processing loop.
// This is the single goroutine that safely manages all state (rooms, clients),
// which also makes every admission decision atomic.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.unregister(c)
			}
			return

		case client := <-h.Register:
			h.clients[client] = struct{}{}
			slog.Debug("client registered", "conn", client.ID)

		case client := <-h.Unregister:
			h.unregister(client)

		case message := <-h.Inbound:
			h.handle(message)

		case reply := <-h.stats:
			reply <- Stats{Rooms: len(h.Rooms), Connections: len(h.clients)}
		}
	}
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Stats asks the hub loop for its current counters.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) unregister(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	slog.Debug("client unregistered", "conn", c.ID)

	h.leave(c)
	delete(h.clients, c)

	// Stops the client's WritePump.
	close(c.Send)
}

// handle dispatches one inbound message.
func (h *Hub) handle(msg *Message) {
	slog.Debug("message received", "type", msg.Type, "conn", msg.client.ID)

	switch {
	case msg.Type == TypeJoin:
		h.join(msg.client, msg.RoomID, msg.ClientType)

	case isRelayed(msg.Type):
		h.relay(msg)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "conn", msg.client.ID)
	}
}

// join admits c into roomID when the room has space.
func (h *Hub) join(c *Client, roomID, clientType string) {
	if roomID == "" {
		h.deliver(c, errorMessage("room id is required"))
		return
	}

	room, ok := h.Rooms[roomID]
	if ok && room.Has(c) {
		slog.Debug("already in room", "room", roomID, "conn", c.ID)
		return
	}

	// A refused join leaves every membership as it was.
	if ok && room.Full() {
		slog.Info("room full", "room", roomID, "conn", c.ID)
		h.deliver(c, &Message{Type: TypeFull, RoomID: roomID})
		return
	}

	// A connection lives in at most one room.
	if c.RoomID != "" {
		h.leave(c)
	}
	c.ClientType = clientType

	if !ok {
		room = newRoom(roomID)
		h.Rooms[roomID] = room
	}

	switch room.Size() {
	case 0:
		room.add(c)
		c.RoomID = roomID
		slog.Info("room created", "room", roomID, "conn", c.ID)
		h.deliver(c, &Message{Type: TypeCreated, RoomID: roomID})

	case 1:
		room.add(c)
		c.RoomID = roomID
		slog.Info("room joined", "room", roomID, "conn", c.ID)
		h.deliver(c, &Message{Type: TypeJoined, RoomID: roomID})

		// Every member learns about the other one and starts negotiating.
		for _, member := range room.Members {
			var peerType string
			if others := room.Others(member); len(others) > 0 {
				peerType = others[0].ClientType
			}
			payload, _ := json.Marshal(PeerInfo{ClientType: peerType})
			h.deliver(member, &Message{Type: TypeReady, RoomID: roomID, Payload: payload})
		}
	}
}

// relay forwards an offer, answer or candidate unmodified to the other
// members of the room named in the message. Senders outside the room
// reach nobody.
func (h *Hub) relay(msg *Message) {
	room, ok := h.Rooms[msg.RoomID]
	if !ok || !room.Has(msg.client) {
		slog.Debug("relay dropped: sender not in room", "type", msg.Type, "room", msg.RoomID, "conn", msg.client.ID)
		return
	}

	for _, target := range room.Others(msg.client) {
		slog.Debug("relaying", "type", msg.Type, "room", room.ID, "from", msg.client.ID, "to", target.ID)
		h.deliver(target, msg)
	}
}

// leave removes c from its room, deleting the room when it empties and
// telling any remaining member that its peer is gone.
func (h *Hub) leave(c *Client) {
	if c.RoomID == "" {
		return
	}
	roomID := c.RoomID
	c.RoomID = ""

	room, ok := h.Rooms[roomID]
	if !ok || !room.remove(c) {
		return
	}

	if room.Size() == 0 {
		delete(h.Rooms, roomID)
		slog.Info("room deleted", "room", roomID)
		return
	}

	slog.Info("peer left room", "room", roomID, "conn", c.ID)
	for _, member := range room.Members {
		h.deliver(member, &Message{Type: TypePeerLeft, RoomID: roomID})
	}
}

// deliver queues msg for c without ever blocking the hub loop.
func (h *Hub) deliver(c *Client, msg *Message) {
	select {
	case c.Send <- msg:
	default:
		slog.Warn("send queue full, dropping message", "conn", c.ID, "type", msg.Type)
	}
}
