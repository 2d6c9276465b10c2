package negotiation

import (
	"fmt"
	"log/slog"

	pion "github.com/pion/webrtc/v4"

	"github.com/Alaminislam-stack/wash2gather/internal/syncchan"
)

// Role tells which side of the negotiation we are on.
type Role int

const (
	RoleUnknown Role = iota

	// Initiator is the member that created the room. It opens the sync
	// channel and sends the offer.
	Initiator

	// Responder is the member that joined second. It answers.
	Responder
)

func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Responder:
		return "responder"
	}
	return "unknown"
}

// State is the negotiation progress.
type State string

const (
	Idle            State = "idle"
	OfferSent       State = "offer-sent"
	AwaitingOffer   State = "awaiting-offer"
	AnswerExchanged State = "answer-exchanged"
	ChannelOpen     State = "channel-open"
	Connected       State = "connected"
	Stalled         State = "failed"
)

// Status lines shown to the user.
const (
	StatusWaiting   = "Waiting for peer..."
	StatusJoined    = "Joined room. Connecting..."
	StatusFull      = "Room is full"
	StatusP2P       = "Connected (P2P)"
	StatusOpen      = "Connected (Data Channel Open)"
	StatusPeerLeft  = "Peer left. Waiting for peer..."
	StatusReconnect = "Reconnected. Rejoining..."
)

// Controller is the peer negotiation state machine. Step is a pure
// transition: it never touches the network, it only returns the actions
// to perform. It is not safe for concurrent use.
type Controller struct {
	role           Role
	state          State
	peerType       string
	hasConnection  bool
	remoteApplied  bool
	connected      bool
	channelOpen    bool
	candidateQueue []pion.ICECandidateInit
}

// NewController returns an idle controller.
func NewController() *Controller {
	return &Controller{state: Idle}
}

func (c *Controller) Role() Role            { return c.role }
func (c *Controller) State() State          { return c.state }
func (c *Controller) PeerType() string      { return c.peerType }
func (c *Controller) HasConnection() bool   { return c.hasConnection }
func (c *Controller) RemoteApplied() bool   { return c.remoteApplied }
func (c *Controller) QueuedCandidates() int { return len(c.candidateQueue) }

// Step applies one event and returns the actions it calls for.
func (c *Controller) Step(ev Event) []Action {
	if c.state == Stalled {
		switch ev.(type) {
		case PeerLeft, Reset:
		default:
			slog.Debug("negotiation stalled, event ignored", "event", fmt.Sprintf("%T", ev))
			return nil
		}
	}

	switch e := ev.(type) {
	case Created:
		c.role = Initiator
		return status(StatusWaiting)

	case Joined:
		c.role = Responder
		return status(StatusJoined)

	case Full:
		return status(StatusFull)

	case Ready:
		return c.ready(e)

	case OfferReceived:
		return c.offer(e)

	case AnswerReceived:
		return c.answer(e)

	case CandidateReceived:
		if c.hasConnection && c.remoteApplied {
			return []Action{AddCandidate{Candidate: e.Candidate}}
		}
		c.candidateQueue = append(c.candidateQueue, e.Candidate)
		slog.Debug("remote candidate queued", "queued", len(c.candidateQueue))
		return nil

	case LocalCandidate:
		return []Action{SendCandidate{Candidate: e.Candidate}}

	case ConnectionStateChanged:
		return c.connectionState(e.State)

	case ChannelOpened:
		c.channelOpen = true
		c.state = ChannelOpen
		if c.connected {
			c.state = Connected
		}
		return []Action{Status{Text: StatusOpen}, ChannelReady{}}

	case PeerLeft:
		actions := c.teardown()
		// The remaining member is alone again and offers to the next peer.
		c.role = Initiator
		return append(actions, Status{Text: StatusPeerLeft})

	case Failed:
		slog.Error("negotiation failed", "op", e.Op, "err", e.Err)
		c.state = Stalled
		return status(fmt.Sprintf("Negotiation failed: %s: %v", e.Op, e.Err))

	case Reset:
		actions := c.teardown()
		c.role = RoleUnknown
		c.peerType = ""
		return actions
	}

	return nil
}

func (c *Controller) ready(e Ready) []Action {
	c.peerType = e.PeerType

	// The offer may overtake ready. A responder that already holds a
	// connection keeps it; the initiator will not offer again.
	if c.role == Responder && c.hasConnection {
		slog.Debug("ready after offer, keeping connection", "state", c.state)
		return nil
	}

	var actions []Action
	if c.hasConnection {
		actions = c.teardown()
	}

	switch c.role {
	case Initiator:
		c.hasConnection = true
		c.state = OfferSent
		return append(actions,
			CreateConnection{},
			// The channel must exist before the offer so it is negotiated.
			CreateChannel{Codec: syncchan.SelectCodec(e.PeerType)},
			SendOffer{},
		)

	case Responder:
		c.hasConnection = true
		c.state = AwaitingOffer
		return append(actions, CreateConnection{})
	}

	slog.Warn("ready before room assignment, ignoring")
	return actions
}

func (c *Controller) offer(e OfferReceived) []Action {
	if c.role == Initiator {
		slog.Warn("offer received by initiator, ignoring")
		return status("Ignored unexpected offer")
	}
	c.role = Responder

	var actions []Action
	if !c.hasConnection {
		c.hasConnection = true
		actions = append(actions, CreateConnection{})
	}

	actions = append(actions, ApplyRemote{Description: e.Description})
	c.remoteApplied = true
	actions = append(actions, c.flushCandidates()...)
	actions = append(actions, SendAnswer{})
	c.state = AnswerExchanged
	return actions
}

func (c *Controller) answer(e AnswerReceived) []Action {
	if c.role != Initiator || !c.hasConnection {
		slog.Warn("unexpected answer, ignoring", "role", c.role, "state", c.state)
		return nil
	}

	actions := []Action{ApplyRemote{Description: e.Description}}
	c.remoteApplied = true
	actions = append(actions, c.flushCandidates()...)
	c.state = AnswerExchanged
	return actions
}

func (c *Controller) connectionState(s pion.PeerConnectionState) []Action {
	switch s {
	case pion.PeerConnectionStateConnected:
		c.connected = true
		if c.channelOpen {
			c.state = Connected
		}
		return status(StatusP2P)
	case pion.PeerConnectionStateDisconnected, pion.PeerConnectionStateFailed:
		c.connected = false
		return status("Connection " + s.String())
	}
	return nil
}

func (c *Controller) flushCandidates() []Action {
	if len(c.candidateQueue) == 0 {
		return nil
	}
	actions := make([]Action, 0, len(c.candidateQueue))
	for _, cand := range c.candidateQueue {
		actions = append(actions, AddCandidate{Candidate: cand})
	}
	slog.Debug("flushed queued candidates", "count", len(actions))
	c.candidateQueue = nil
	return actions
}

// teardown drops the connection and all per-connection state.
func (c *Controller) teardown() []Action {
	var actions []Action
	if c.hasConnection {
		actions = append(actions, CloseConnection{})
	}
	c.state = Idle
	c.hasConnection = false
	c.remoteApplied = false
	c.connected = false
	c.channelOpen = false
	c.candidateQueue = nil
	return actions
}

func status(text string) []Action {
	return []Action{Status{Text: text}}
}
