package negotiation

import (
	pion "github.com/pion/webrtc/v4"
)

// Event is an input to the controller. Signaling messages, peer connection
// callbacks and failures are all turned into events.
type Event interface {
	event()
}

type (
	// Created reports that we opened the room and are its sole member.
	Created struct{ RoomID string }

	// Joined reports that we were admitted as the second member.
	Joined struct{ RoomID string }

	// Full reports that the room turned us away.
	Full struct{ RoomID string }

	// Ready reports that both members are present. PeerType is the other
	// member's client type when the relay supplied it.
	Ready struct{ PeerType string }

	OfferReceived struct {
		Description pion.SessionDescription
	}

	AnswerReceived struct {
		Description pion.SessionDescription
	}

	CandidateReceived struct {
		Candidate pion.ICECandidateInit
	}

	// LocalCandidate is a candidate gathered by our own connection.
	LocalCandidate struct {
		Candidate pion.ICECandidateInit
	}

	ConnectionStateChanged struct {
		State pion.PeerConnectionState
	}

	// ChannelOpened reports that the sync channel is usable.
	ChannelOpened struct{}

	// PeerLeft reports that the other member disconnected.
	PeerLeft struct{}

	// Failed reports that executing an action failed.
	Failed struct {
		Op  string
		Err error
	}

	// Reset discards all negotiation state, for example after the
	// signaling transport reconnected.
	Reset struct{}
)

func (Created) event()                {}
func (Joined) event()                 {}
func (Full) event()                   {}
func (Ready) event()                  {}
func (OfferReceived) event()          {}
func (AnswerReceived) event()         {}
func (CandidateReceived) event()      {}
func (LocalCandidate) event()         {}
func (ConnectionStateChanged) event() {}
func (ChannelOpened) event()          {}
func (PeerLeft) event()               {}
func (Failed) event()                 {}
func (Reset) event()                  {}
