package playback

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/Alaminislam-stack/wash2gather/internal/syncchan"
)

const (
	// Tolerance is the drift below which a remote position is not applied.
	Tolerance = 1.0

	// SettleDelay is how long after the most recent remote apply local
	// state changes are still treated as echoes.
	SettleDelay = 500 * time.Millisecond

	// LoadFallback bounds how long a sync-response waits for the player to
	// report the video loaded before seeking anyway.
	LoadFallback = time.Second
)

// ErrInvalidVideoURL is returned when a URL carries no video identifier.
var ErrInvalidVideoURL = errors.New("invalid YouTube URL")

// Sender is where outbound sync messages go. *syncchan.Channel satisfies it.
type Sender interface {
	Send(msg syncchan.Message) error
	IsOpen() bool
}

// Scheduler runs fn after d on the caller's event loop. Callbacks must never
// run concurrently with the Syncer's methods.
type Scheduler func(d time.Duration, fn func())

// Syncer keeps the local player in step with the peer. It is not safe for
// concurrent use; the session drives it from a single loop.
type Syncer struct {
	player   Player
	sender   Sender
	schedule Scheduler

	// applying is set while remote state is being applied. generation
	// identifies the most recent apply so only its timer clears the flag.
	applying   bool
	generation uint64

	pending *pendingSeek
	url     string
}

type pendingSeek struct {
	time  float64
	state State
}

// NewSyncer creates a syncer for player. Messages are dropped until a
// sender is attached with SetSender.
func NewSyncer(player Player, schedule Scheduler) *Syncer {
	return &Syncer{player: player, schedule: schedule}
}

// SetSender attaches the channel outbound messages are written to.
func (s *Syncer) SetSender(sender Sender) {
	s.sender = sender
}

// Applying reports whether the suppression window is open.
func (s *Syncer) Applying() bool {
	return s.applying
}

// URL returns the URL of the current video as last loaded or received.
func (s *Syncer) URL() string {
	return s.url
}

// Player returns the driven player.
func (s *Syncer) Player() Player {
	return s.player
}

// HandleEvent processes a notification from the local player.
func (s *Syncer) HandleEvent(ev Event) error {
	switch ev.Kind {
	case Loaded:
		if p := s.pending; p != nil {
			s.finishLoad(p)
		}
		return nil
	case StateChanged:
		return s.localStateChanged(ev.State)
	}
	return nil
}

// localStateChanged mirrors a local state change to the peer unless it was
// caused by applying remote state.
func (s *Syncer) localStateChanged(state State) error {
	if s.applying {
		slog.Debug("state change suppressed", "state", state)
		return nil
	}
	if !s.canSend() {
		return nil
	}
	return s.sender.Send(&syncchan.VideoSync{
		State: int(state),
		Time:  s.player.CurrentTime(),
	})
}

// Handle applies an inbound sync channel message. Chat is not handled here.
func (s *Syncer) Handle(msg syncchan.Message) error {
	switch m := msg.(type) {
	case *syncchan.VideoSync:
		s.applyVideoSync(m)
	case *syncchan.LoadVideo:
		s.applyLoadVideo(m)
	case *syncchan.RequestSync:
		return s.answerRequestSync()
	case *syncchan.SyncResponse:
		s.applySyncResponse(m)
	default:
		slog.Debug("syncer ignoring message", "type", msg.Kind())
	}
	return nil
}

// RequestSync asks the peer for its playback state. The session calls it
// once when the channel opens.
func (s *Syncer) RequestSync() error {
	if !s.canSend() {
		return nil
	}
	return s.sender.Send(&syncchan.RequestSync{})
}

// LoadLocal loads a video chosen by the local user and tells the peer.
func (s *Syncer) LoadLocal(url string) (string, error) {
	id, ok := ExtractVideoID(url)
	if !ok {
		return "", ErrInvalidVideoURL
	}

	s.pending = nil
	s.player.LoadVideoByID(id)
	s.url = url

	if !s.canSend() {
		return id, nil
	}
	return id, s.sender.Send(&syncchan.LoadVideo{VideoID: id, URL: url})
}

func (s *Syncer) applyVideoSync(m *syncchan.VideoSync) {
	s.beginApply()
	s.applyPosition(m.Time, State(m.State))
}

func (s *Syncer) applyLoadVideo(m *syncchan.LoadVideo) {
	s.beginApply()
	s.pending = nil
	s.player.LoadVideoByID(m.VideoID)
	s.url = m.URL
}

func (s *Syncer) applySyncResponse(m *syncchan.SyncResponse) {
	s.beginApply()
	s.player.LoadVideoByID(m.VideoID)
	s.url = m.URL

	p := &pendingSeek{time: m.Time, state: State(m.State)}
	s.pending = p
	s.schedule(LoadFallback, func() {
		if s.pending == p {
			slog.Debug("load signal missed, seeking on fallback")
			s.finishLoad(p)
		}
	})
}

// finishLoad seeks a freshly loaded video to the position a sync-response
// asked for.
func (s *Syncer) finishLoad(p *pendingSeek) {
	s.pending = nil
	s.beginApply()
	s.applyPosition(p.time, p.state)
}

func (s *Syncer) applyPosition(t float64, state State) {
	if math.Abs(s.player.CurrentTime()-t) > Tolerance {
		s.player.SeekTo(t, true)
	}

	switch state {
	case Playing:
		s.player.PlayVideo()
	case Paused:
		s.player.PauseVideo()
	}
}

func (s *Syncer) answerRequestSync() error {
	id := s.player.VideoID()
	if id == "" || !s.canSend() {
		return nil
	}
	return s.sender.Send(&syncchan.SyncResponse{
		VideoID: id,
		Time:    s.player.CurrentTime(),
		State:   int(s.player.State()),
		URL:     s.url,
	})
}

// beginApply opens the suppression window, or extends it when already open.
func (s *Syncer) beginApply() {
	s.applying = true
	s.generation++
	gen := s.generation
	s.schedule(SettleDelay, func() {
		if s.generation == gen {
			s.applying = false
		}
	})
}

func (s *Syncer) canSend() bool {
	return s.sender != nil && s.sender.IsOpen()
}
