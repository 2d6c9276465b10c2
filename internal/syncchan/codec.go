package syncchan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec names the wire encoding of the sync channel. It is advertised as the
// data channel protocol so both ends agree.
type Codec string

const (
	// CodecJSON sends JSON text frames. Browsers speak this.
	CodecJSON Codec = "json"

	// CodecMsgpack sends msgpack binary frames between CLI peers.
	CodecMsgpack Codec = "msgpack"
)

var (
	ErrUnknownType  = errors.New("unknown message type")
	ErrUnknownCodec = errors.New("unknown codec")
)

// SelectCodec picks the encoding based on the peer's client type.
func SelectCodec(peerType string) Codec {
	if peerType == "cli" {
		return CodecMsgpack
	}

	// Default to JSON for browser compatibility
	return CodecJSON
}

// ParseCodec maps a data channel protocol string to a codec. Browsers
// leave the protocol empty.
func ParseCodec(protocol string) Codec {
	if Codec(protocol) == CodecMsgpack {
		return CodecMsgpack
	}
	return CodecJSON
}

// Encode stamps the type tag on msg and serializes it.
func (c Codec) Encode(msg Message) ([]byte, error) {
	msg.stamp(msg.Kind())

	switch c {
	case CodecJSON, "":
		return json.Marshal(msg)
	case CodecMsgpack:
		return msgpack.Marshal(msg)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
}

// Decode parses one frame into its concrete message type.
func (c Codec) Decode(data []byte) (Message, error) {
	var header Header
	unmarshal := json.Unmarshal
	switch c {
	case CodecJSON, "":
	case CodecMsgpack:
		unmarshal = msgpack.Unmarshal
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}

	if err := unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	msg, ok := newMessage(header.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, header.Type)
	}
	if err := unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", header.Type, err)
	}
	return msg, nil
}
