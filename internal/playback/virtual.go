package playback

import (
	"log/slog"
	"sync"
	"time"
)

const eventBuffer = 64

// VirtualPlayer is a headless player. Its position advances with the clock
// while playing. It stands in for the browser widget on terminal peers.
type VirtualPlayer struct {
	mu sync.Mutex

	now       func() time.Time
	videoID   string
	state     State
	position  float64
	startedAt time.Time

	events chan Event
}

// NewVirtualPlayer returns an unstarted player with no video.
func NewVirtualPlayer() *VirtualPlayer {
	return NewVirtualPlayerWithClock(time.Now)
}

// NewVirtualPlayerWithClock is NewVirtualPlayer with an injectable clock.
func NewVirtualPlayerWithClock(now func() time.Time) *VirtualPlayer {
	return &VirtualPlayer{
		now:    now,
		state:  Unstarted,
		events: make(chan Event, eventBuffer),
	}
}

func (p *VirtualPlayer) Events() <-chan Event {
	return p.events
}

// LoadVideoByID cues id at position zero and reports it loaded.
func (p *VirtualPlayer) LoadVideoByID(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.videoID = id
	p.position = 0
	p.setState(Unstarted)
	p.setState(Cued)
	p.emit(Event{Kind: Loaded, State: p.state, VideoID: id})
}

func (p *VirtualPlayer) SeekTo(seconds float64, _ bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.videoID == "" {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	p.position = seconds
	p.startedAt = p.now()

	// A seek re-announces the state so peers pick up the new position.
	if p.state == Playing || p.state == Paused {
		p.emit(Event{Kind: StateChanged, State: p.state, VideoID: p.videoID})
	}
}

func (p *VirtualPlayer) PlayVideo() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.videoID == "" || p.state == Playing {
		return
	}
	p.startedAt = p.now()
	p.setState(Playing)
}

func (p *VirtualPlayer) PauseVideo() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Playing {
		if p.videoID != "" && p.state != Paused {
			p.setState(Paused)
		}
		return
	}
	p.position = p.currentTime()
	p.setState(Paused)
}

func (p *VirtualPlayer) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTime()
}

func (p *VirtualPlayer) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *VirtualPlayer) VideoID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.videoID
}

func (p *VirtualPlayer) currentTime() float64 {
	if p.state != Playing {
		return p.position
	}
	return p.position + p.now().Sub(p.startedAt).Seconds()
}

func (p *VirtualPlayer) setState(s State) {
	if p.state == s {
		return
	}
	p.state = s
	p.emit(Event{Kind: StateChanged, State: s, VideoID: p.videoID})
}

func (p *VirtualPlayer) emit(ev Event) {
	select {
	case p.events <- ev:
	default:
		slog.Warn("player event dropped", "kind", ev.Kind, "state", ev.State)
	}
}
