package session

import (
	"errors"
	"fmt"

	"github.com/Alaminislam-stack/wash2gather/internal/playback"
)

var (
	ErrRoomFull          = errors.New("room is full")
	ErrInvalidVideoURL   = playback.ErrInvalidVideoURL
	ErrChannelNotOpen    = errors.New("channel not open")
	ErrSignalingError    = errors.New("signaling server error")
	ErrNotConnected      = errors.New("no peer connection")
	ErrNoVideo           = errors.New("no video loaded")
	ErrNegotiationFailed = errors.New("negotiation failed")
	ErrClosed            = errors.New("session closed")
)

type SessionError struct {
	Op      string
	Err     error
	Details string
}

func (e *SessionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *SessionError {
	return &SessionError{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *SessionError {
	return &SessionError{Op: op, Err: err, Details: details}
}
