package playback

// State is a player state code, numbered the way the YouTube IFrame API
// numbers them so browser peers can exchange them unchanged.
type State int

const (
	Unstarted State = -1
	Ended     State = 0
	Playing   State = 1
	Paused    State = 2
	Buffering State = 3
	Cued      State = 5
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Ended:
		return "ended"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Buffering:
		return "buffering"
	case Cued:
		return "cued"
	}
	return "unknown"
}

// EventKind distinguishes player notifications.
type EventKind int

const (
	// StateChanged fires whenever the player state changes.
	StateChanged EventKind = iota

	// Loaded fires once a newly loaded video is ready to seek.
	Loaded
)

// Event is a notification from the player.
type Event struct {
	Kind    EventKind
	State   State
	VideoID string
}

// Player is the embedded video player the syncer drives.
type Player interface {
	LoadVideoByID(id string)
	SeekTo(seconds float64, allowSeekAhead bool)
	PlayVideo()
	PauseVideo()
	CurrentTime() float64
	State() State
	VideoID() string
	Events() <-chan Event
}
