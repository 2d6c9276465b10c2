package negotiation

import (
	"fmt"
	"log/slog"

	pion "github.com/pion/webrtc/v4"

	"github.com/Alaminislam-stack/wash2gather/internal/syncchan"
)

// ICEConfig lists the servers used to find a path to the peer.
type ICEConfig struct {
	STUNServers  []string
	TURNServers  []string
	TURNUsername string
	TURNPassword string

	// ForceRelay restricts candidates to TURN relays. Ignored without TURN.
	ForceRelay bool
}

// Hooks receive peer connection callbacks. They run on pion goroutines and
// must only hand the data to the session loop.
type Hooks struct {
	OnICECandidate    func(pion.ICECandidateInit)
	OnConnectionState func(pion.PeerConnectionState)
	OnChannel         func(*syncchan.Channel)
	OnChannelOpen     func()
	OnChannelMessage  func(data []byte)
	OnChannelClose    func()
}

// Peer is the connection object the session drives.
type Peer interface {
	CreateChannel(codec syncchan.Codec) error
	CreateOffer() (pion.SessionDescription, error)
	CreateAnswer() (pion.SessionDescription, error)
	SetRemoteDescription(desc pion.SessionDescription) error
	AddICECandidate(candidate pion.ICECandidateInit) error
	Close() error
}

// PionPeer implements Peer on a pion peer connection.
type PionPeer struct {
	pc    *pion.PeerConnection
	hooks Hooks
}

// NewPionPeer creates a peer connection and registers hooks on it.
func NewPionPeer(ice ICEConfig, hooks Hooks) (*PionPeer, error) {
	pc, err := pion.NewPeerConnection(Configuration(ice))
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	p := &PionPeer{pc: pc, hooks: hooks}

	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil || hooks.OnICECandidate == nil {
			return
		}
		hooks.OnICECandidate(c.ToJSON())
	})

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		slog.Debug("peer connection state", "state", state.String())
		if hooks.OnConnectionState != nil {
			hooks.OnConnectionState(state)
		}
	})

	// The responder gets the channel from the initiator.
	pc.OnDataChannel(func(dc *pion.DataChannel) {
		slog.Debug("inbound data channel", "label", dc.Label(), "protocol", dc.Protocol())
		p.wireChannel(dc, syncchan.ParseCodec(dc.Protocol()))
	})

	return p, nil
}

// Configuration builds the pion configuration for ice.
func Configuration(ice ICEConfig) pion.Configuration {
	var servers []pion.ICEServer
	if len(ice.STUNServers) > 0 {
		servers = append(servers, pion.ICEServer{URLs: ice.STUNServers})
	}
	if len(ice.TURNServers) > 0 {
		servers = append(servers, pion.ICEServer{
			URLs:       ice.TURNServers,
			Username:   ice.TURNUsername,
			Credential: ice.TURNPassword,
		})
	}

	policy := pion.ICETransportPolicyAll
	if len(ice.TURNServers) > 0 && ice.ForceRelay {
		policy = pion.ICETransportPolicyRelay
	}

	return pion.Configuration{
		ICEServers:         servers,
		ICETransportPolicy: policy,
	}
}

// CreateChannel opens the ordered, reliable sync channel. The codec is
// advertised as the channel protocol.
func (p *PionPeer) CreateChannel(codec syncchan.Codec) error {
	ordered := true
	protocol := string(codec)

	dc, err := p.pc.CreateDataChannel(syncchan.Label, &pion.DataChannelInit{
		Ordered:  &ordered,
		Protocol: &protocol,
	})
	if err != nil {
		return fmt.Errorf("create data channel: %w", err)
	}
	p.wireChannel(dc, codec)
	return nil
}

func (p *PionPeer) wireChannel(dc *pion.DataChannel, codec syncchan.Codec) {
	if p.hooks.OnChannel != nil {
		p.hooks.OnChannel(syncchan.NewChannel(dc, codec))
	}

	dc.OnOpen(func() {
		slog.Debug("data channel open", "label", dc.Label())
		if p.hooks.OnChannelOpen != nil {
			p.hooks.OnChannelOpen()
		}
	})

	dc.OnMessage(func(msg pion.DataChannelMessage) {
		if p.hooks.OnChannelMessage != nil {
			p.hooks.OnChannelMessage(msg.Data)
		}
	})

	dc.OnClose(func() {
		slog.Debug("data channel closed", "label", dc.Label())
		if p.hooks.OnChannelClose != nil {
			p.hooks.OnChannelClose()
		}
	})
}

// CreateOffer creates an offer and applies it as the local description.
func (p *PionPeer) CreateOffer() (pion.SessionDescription, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return pion.SessionDescription{}, fmt.Errorf("create offer: %w", err)
	}

	if err = p.pc.SetLocalDescription(offer); err != nil {
		return pion.SessionDescription{}, fmt.Errorf("set local description: %w", err)
	}

	return *p.pc.LocalDescription(), nil
}

// CreateAnswer creates an answer to the applied remote offer and applies it
// as the local description.
func (p *PionPeer) CreateAnswer() (pion.SessionDescription, error) {
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return pion.SessionDescription{}, fmt.Errorf("create answer: %w", err)
	}

	if err = p.pc.SetLocalDescription(answer); err != nil {
		return pion.SessionDescription{}, fmt.Errorf("set local description: %w", err)
	}

	return *p.pc.LocalDescription(), nil
}

func (p *PionPeer) SetRemoteDescription(desc pion.SessionDescription) error {
	if err := p.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

func (p *PionPeer) AddICECandidate(candidate pion.ICECandidateInit) error {
	if err := p.pc.AddICECandidate(candidate); err != nil {
		return fmt.Errorf("add ICE candidate: %w", err)
	}
	return nil
}

func (p *PionPeer) Close() error {
	return p.pc.Close()
}
