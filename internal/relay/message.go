package relay

import "encoding/json"

// Message defines the structure for all C2S (Client to Server)
// and S2C (Server to Client) websocket messages.
type Message struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RoomID     string          `json:"room_id,omitempty"`
	ClientType string          `json:"client_type,omitempty"`

	// client is the client that sent the message.
	// It's used internally by the Hub and not sent over JSON.
	client *Client `json:"-"`
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
)

// PeerInfo describes the other member of a room. It rides on "ready".
type PeerInfo struct {
	ClientType string `json:"client_type"`
}

// ErrorPayload is the payload of an "error" message.
type ErrorPayload struct {
	Error string `json:"error"`
}

func isRelayed(msgType string) bool {
	switch msgType {
	case TypeOffer, TypeAnswer, TypeCandidate:
		return true
	}
	return false
}

func errorMessage(text string) *Message {
	payload, _ := json.Marshal(ErrorPayload{Error: text})
	return &Message{Type: TypeError, Payload: payload}
}
