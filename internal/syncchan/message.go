package syncchan

// Message types carried over the sync channel.
const (
	TypeChat         = "chat"
	TypeVideoSync    = "video-sync"
	TypeLoadVideo    = "load-video"
	TypeRequestSync  = "request-sync"
	TypeSyncResponse = "sync-response"
)

// Message is one of the sync channel message structs below.
type Message interface {
	Kind() string
	stamp(kind string)
}

// Header carries the type tag every message starts with.
type Header struct {
	Type string `json:"type" msgpack:"type"`
}

func (h *Header) stamp(kind string) { h.Type = kind }

// Chat is a short text message. Timestamp is display-only (HH:MM:SS).
type Chat struct {
	Header    `msgpack:",inline"`
	Text      string `json:"text" msgpack:"text"`
	Timestamp string `json:"timestamp" msgpack:"timestamp"`
	User      string `json:"user" msgpack:"user"`
}

// VideoSync mirrors a local player state change.
type VideoSync struct {
	Header `msgpack:",inline"`
	State  int     `json:"state" msgpack:"state"`
	Time   float64 `json:"time" msgpack:"time"`
}

// LoadVideo tells the peer to load a video.
type LoadVideo struct {
	Header  `msgpack:",inline"`
	VideoID string `json:"videoId" msgpack:"videoId"`
	URL     string `json:"url" msgpack:"url"`
}

// RequestSync asks the peer for its current playback state.
type RequestSync struct {
	Header `msgpack:",inline"`
}

// SyncResponse answers RequestSync.
type SyncResponse struct {
	Header  `msgpack:",inline"`
	VideoID string  `json:"videoId" msgpack:"videoId"`
	Time    float64 `json:"time" msgpack:"time"`
	State   int     `json:"state" msgpack:"state"`
	URL     string  `json:"url" msgpack:"url"`
}

func (*Chat) Kind() string         { return TypeChat }
func (*VideoSync) Kind() string    { return TypeVideoSync }
func (*LoadVideo) Kind() string    { return TypeLoadVideo }
func (*RequestSync) Kind() string  { return TypeRequestSync }
func (*SyncResponse) Kind() string { return TypeSyncResponse }

// newMessage returns an empty message for a type tag.
func newMessage(kind string) (Message, bool) {
	switch kind {
	case TypeChat:
		return &Chat{}, true
	case TypeVideoSync:
		return &VideoSync{}, true
	case TypeLoadVideo:
		return &LoadVideo{}, true
	case TypeRequestSync:
		return &RequestSync{}, true
	case TypeSyncResponse:
		return &SyncResponse{}, true
	}
	return nil, false
}
