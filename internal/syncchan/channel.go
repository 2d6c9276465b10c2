package syncchan

import (
	"errors"
	"fmt"
)

// Label is the data channel label used for the sync channel.
const Label = "chat"

// ErrClosed is returned when sending on a channel that is not open.
var ErrClosed = errors.New("sync channel not open")

// Transport is the part of a data channel the sync channel writes to.
// *webrtc.DataChannel satisfies it.
type Transport interface {
	Send(data []byte) error
	SendText(s string) error
}

// Channel is the ordered, reliable peer-to-peer channel carrying chat and
// playback messages.
type Channel struct {
	transport Transport
	codec     Codec
	open      bool
}

// NewChannel wraps a transport. The channel starts closed until MarkOpen.
func NewChannel(t Transport, codec Codec) *Channel {
	return &Channel{transport: t, codec: codec}
}

// Codec returns the wire encoding in use.
func (c *Channel) Codec() Codec {
	return c.codec
}

// MarkOpen records that the underlying transport opened.
func (c *Channel) MarkOpen() { c.open = true }

// MarkClosed records that the underlying transport closed.
func (c *Channel) MarkClosed() { c.open = false }

// IsOpen reports whether messages can be sent.
func (c *Channel) IsOpen() bool {
	return c != nil && c.open
}

// Send encodes and writes msg. JSON goes out as text frames so browser
// peers can parse event.data directly.
func (c *Channel) Send(msg Message) error {
	if !c.IsOpen() {
		return ErrClosed
	}

	data, err := c.codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Kind(), err)
	}

	if c.codec == CodecMsgpack {
		return c.transport.Send(data)
	}
	return c.transport.SendText(string(data))
}

// Decode parses an inbound frame with the channel's codec.
func (c *Channel) Decode(data []byte) (Message, error) {
	return c.codec.Decode(data)
}
