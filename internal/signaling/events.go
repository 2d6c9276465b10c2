package signaling

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	pion "github.com/pion/webrtc/v4"

	"github.com/Alaminislam-stack/wash2gather/internal/negotiation"
)

var (
	// ErrServer wraps an error reported by the relay.
	ErrServer = errors.New("signaling server error")

	// ErrDisconnected means reconnection gave up.
	ErrDisconnected = errors.New("signaling server unreachable")

	ErrUnknownMessage = errors.New("unknown signaling message")
)

// Event converts a relay message into a negotiation event. Error and
// disconnect notifications come back as errors.
func Event(msg *Message) (negotiation.Event, error) {
	switch msg.Type {
	case TypeCreated:
		return negotiation.Created{RoomID: msg.RoomID}, nil

	case TypeJoined:
		return negotiation.Joined{RoomID: msg.RoomID}, nil

	case TypeFull:
		return negotiation.Full{RoomID: msg.RoomID}, nil

	case TypeReady:
		// Browser relays send ready without a payload.
		var info PeerInfo
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &info); err != nil {
				slog.Debug("ready payload rejected, peer type unknown", "err", err)
				info = PeerInfo{}
			}
		}
		return negotiation.Ready{PeerType: info.ClientType}, nil

	case TypeOffer:
		desc, err := decodeDescription(msg)
		if err != nil {
			return nil, err
		}
		return negotiation.OfferReceived{Description: desc}, nil

	case TypeAnswer:
		desc, err := decodeDescription(msg)
		if err != nil {
			return nil, err
		}
		return negotiation.AnswerReceived{Description: desc}, nil

	case TypeCandidate:
		var cand pion.ICECandidateInit
		if err := json.Unmarshal(msg.Payload, &cand); err != nil {
			return nil, fmt.Errorf("failed to parse candidate: %w", err)
		}
		return negotiation.CandidateReceived{Candidate: cand}, nil

	case TypePeerLeft:
		return negotiation.PeerLeft{}, nil

	case TypeReconnected:
		return negotiation.Reset{}, nil

	case TypeDisconnected:
		return nil, ErrDisconnected

	case TypeError:
		var payload ErrorPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Error == "" {
			return nil, fmt.Errorf("%w: unknown error from server", ErrServer)
		}
		return nil, fmt.Errorf("%w: %s", ErrServer, payload.Error)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
}

func decodeDescription(msg *Message) (pion.SessionDescription, error) {
	var desc pion.SessionDescription
	if err := json.Unmarshal(msg.Payload, &desc); err != nil {
		return desc, fmt.Errorf("failed to parse %s: %w", msg.Type, err)
	}
	if desc.SDP == "" {
		return desc, fmt.Errorf("failed to parse %s: empty sdp", msg.Type)
	}
	return desc, nil
}
