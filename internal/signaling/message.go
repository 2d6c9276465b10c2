package signaling

import (
	"encoding/json"
	"fmt"
)

// Message is a relay protocol message, as sent and received over the
// websocket.
type Message struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RoomID     string          `json:"room_id,omitempty"`
	ClientType string          `json:"client_type,omitempty"`
}

// Message type constants.
const (
	TypeJoin      = "join"
	TypeOffer     = "offer"
	TypeAnswer    = "answer"
	TypeCandidate = "candidate"

	TypeCreated  = "created"
	TypeJoined   = "joined"
	TypeFull     = "full"
	TypeReady    = "ready"
	TypePeerLeft = "peer-left"
	TypeError    = "error"

	// Local notifications from the client itself, never on the wire.
	TypeReconnected  = "reconnected"
	TypeDisconnected = "disconnected"
)

// ClientType identifies this implementation to the relay.
const ClientType = "cli"

// PeerInfo contains information about the connected peer
type PeerInfo struct {
	ClientType string `json:"client_type"`
}

// ErrorPayload represents error messages from server.
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewJoin builds a join request for room.
func NewJoin(room string) *Message {
	return &Message{Type: TypeJoin, RoomID: room, ClientType: ClientType}
}

// NewRelayed builds an offer, answer or candidate message for room.
func NewRelayed(kind, room string, payload any) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return &Message{Type: kind, RoomID: room, Payload: data}, nil
}
