package negotiation

import (
	pion "github.com/pion/webrtc/v4"

	"github.com/Alaminislam-stack/wash2gather/internal/syncchan"
)

// Action is an effect the controller asks its executor to perform, in
// order. When one fails the executor stops and reports Failed.
type Action interface {
	action()
}

type (
	// CreateConnection creates the peer connection object.
	CreateConnection struct{}

	// CreateChannel creates the sync channel on the initiator side.
	CreateChannel struct{ Codec syncchan.Codec }

	// SendOffer creates an offer, applies it locally and sends it.
	SendOffer struct{}

	// ApplyRemote applies the peer's session description.
	ApplyRemote struct {
		Description pion.SessionDescription
	}

	// SendAnswer creates an answer, applies it locally and sends it.
	SendAnswer struct{}

	// AddCandidate applies a remote candidate.
	AddCandidate struct {
		Candidate pion.ICECandidateInit
	}

	// SendCandidate relays a local candidate to the peer.
	SendCandidate struct {
		Candidate pion.ICECandidateInit
	}

	// CloseConnection tears down the peer connection and its channel.
	CloseConnection struct{}

	// ChannelReady tells the session the sync channel opened.
	ChannelReady struct{}

	// Status is a human readable progress line.
	Status struct{ Text string }
)

func (CreateConnection) action() {}
func (CreateChannel) action()    {}
func (SendOffer) action()        {}
func (ApplyRemote) action()      {}
func (SendAnswer) action()       {}
func (AddCandidate) action()     {}
func (SendCandidate) action()    {}
func (CloseConnection) action()  {}
func (ChannelReady) action()     {}
func (Status) action()           {}
