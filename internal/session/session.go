package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/Alaminislam-stack/wash2gather/internal/negotiation"
	"github.com/Alaminislam-stack/wash2gather/internal/playback"
	"github.com/Alaminislam-stack/wash2gather/internal/signaling"
	"github.com/Alaminislam-stack/wash2gather/internal/syncchan"
)

// PeerLabel attributes chat messages received from the other side.
const PeerLabel = "Peer"

const queueSize = 256

// ChatLine is one rendered chat message.
type ChatLine struct {
	User      string
	Text      string
	Timestamp string
	Local     bool
}

// View renders session output. Methods are called from the session loop
// and must not block.
type View interface {
	Status(text string)
	Chat(line ChatLine)
	VideoLoaded(videoID, url string)
	Error(err error)
}

// Signaler is the relay connection. *signaling.Client satisfies it.
type Signaler interface {
	Send(msg *signaling.Message) error
	Incoming() <-chan *signaling.Message
}

// PeerFactory creates a peer connection wired to hooks.
type PeerFactory func(hooks negotiation.Hooks) (negotiation.Peer, error)

// Options configures a Session.
type Options struct {
	Room     string
	Name     string
	Signaler Signaler
	NewPeer  PeerFactory
	Player   playback.Player
	View     View

	// Now stamps outgoing chat. Defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a read-only view of the session for status displays.
type Snapshot struct {
	Role        negotiation.Role
	State       negotiation.State
	ChannelOpen bool
	Codec       syncchan.Codec
	VideoID     string
	URL         string
	PlayerState playback.State
	Position    float64
}

// Session is one watch-together negotiation. Signaling messages, peer
// callbacks, channel data, player events, timers and user commands are all
// funnelled into a single loop and handled to completion in order.
type Session struct {
	room     string
	name     string
	signaler Signaler
	newPeer  PeerFactory
	player   playback.Player
	view     View
	now      func() time.Time

	ctrl   *negotiation.Controller
	syncer *playback.Syncer

	// peerGen identifies the current peer so callbacks from a closed one
	// are dropped.
	peer    negotiation.Peer
	peerGen int
	channel *syncchan.Channel

	queue chan func()
	done  chan struct{}
}

// New creates a session. Call Run to start it.
func New(opts Options) *Session {
	s := &Session{
		room:     opts.Room,
		name:     opts.Name,
		signaler: opts.Signaler,
		newPeer:  opts.NewPeer,
		player:   opts.Player,
		view:     opts.View,
		now:      opts.Now,
		ctrl:     negotiation.NewController(),
		queue:    make(chan func(), queueSize),
		done:     make(chan struct{}),
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.syncer = playback.NewSyncer(s.player, s.schedule)
	return s
}

// Run joins the room and processes events until ctx ends or the signaling
// connection is lost for good.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.closePeer()

	if err := s.join(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-s.signaler.Incoming():
			if !ok {
				return NewError("signaling", ErrSignalingError)
			}
			if err := s.handleSignal(msg); err != nil {
				return err
			}

		case ev := <-s.player.Events():
			s.handlePlayerEvent(ev)

		case fn := <-s.queue:
			fn()
		}
	}
}

func (s *Session) join() error {
	if err := s.signaler.Send(signaling.NewJoin(s.room)); err != nil {
		return WrapError("join", ErrSignalingError, err.Error())
	}
	slog.Debug("join sent", "room", s.room)
	return nil
}

// handleSignal feeds one relay message to the controller. Only a lost
// signaling connection is returned as an error.
func (s *Session) handleSignal(msg *signaling.Message) error {
	ev, err := signaling.Event(msg)
	switch {
	case errors.Is(err, signaling.ErrDisconnected):
		return WrapError("signaling", ErrSignalingError, err.Error())
	case errors.Is(err, signaling.ErrUnknownMessage):
		slog.Debug("ignoring signaling message", "type", msg.Type)
		return nil
	case err != nil:
		slog.Warn("signaling message rejected", "type", msg.Type, "err", err)
		s.view.Error(NewError(msg.Type, err))
		return nil
	}

	s.step(ev)

	switch ev.(type) {
	case negotiation.Full:
		s.view.Error(WrapError("join", ErrRoomFull, s.room))
	case negotiation.Reset:
		// Negotiation state is not reconciled across reconnects; start over.
		s.view.Status(negotiation.StatusReconnect)
		if err := s.join(); err != nil {
			s.view.Error(err)
		}
	}
	return nil
}

func (s *Session) step(ev negotiation.Event) {
	s.execute(s.ctrl.Step(ev))
}

// execute performs actions in order. The first failure is fed back to the
// controller and the rest are abandoned.
func (s *Session) execute(actions []negotiation.Action) {
	for _, action := range actions {
		op, err := s.perform(action)
		if err != nil {
			slog.Error("action failed", "op", op, "err", err)
			s.view.Error(WrapError(op, ErrNegotiationFailed, err.Error()))
			s.step(negotiation.Failed{Op: op, Err: err})
			return
		}
	}
}

func (s *Session) perform(action negotiation.Action) (string, error) {
	switch a := action.(type) {
	case negotiation.CreateConnection:
		return "create connection", s.createPeer()

	case negotiation.CreateChannel:
		if s.peer == nil {
			return "create channel", ErrNotConnected
		}
		return "create channel", s.peer.CreateChannel(a.Codec)

	case negotiation.SendOffer:
		if s.peer == nil {
			return "send offer", ErrNotConnected
		}
		offer, err := s.peer.CreateOffer()
		if err != nil {
			return "send offer", err
		}
		return "send offer", s.sendSignal(signaling.TypeOffer, offer)

	case negotiation.ApplyRemote:
		if s.peer == nil {
			return "apply remote", ErrNotConnected
		}
		return "apply remote", s.peer.SetRemoteDescription(a.Description)

	case negotiation.SendAnswer:
		if s.peer == nil {
			return "send answer", ErrNotConnected
		}
		answer, err := s.peer.CreateAnswer()
		if err != nil {
			return "send answer", err
		}
		return "send answer", s.sendSignal(signaling.TypeAnswer, answer)

	case negotiation.AddCandidate:
		if s.peer == nil {
			return "add candidate", ErrNotConnected
		}
		return "add candidate", s.peer.AddICECandidate(a.Candidate)

	case negotiation.SendCandidate:
		return "send candidate", s.sendSignal(signaling.TypeCandidate, a.Candidate)

	case negotiation.CloseConnection:
		s.closePeer()

	case negotiation.ChannelReady:
		if err := s.syncer.RequestSync(); err != nil {
			slog.Warn("request-sync failed", "err", err)
		}

	case negotiation.Status:
		s.view.Status(a.Text)
	}
	return "", nil
}

func (s *Session) sendSignal(kind string, payload any) error {
	msg, err := signaling.NewRelayed(kind, s.room, payload)
	if err != nil {
		return err
	}
	return s.signaler.Send(msg)
}

func (s *Session) createPeer() error {
	s.closePeer()

	s.peerGen++
	gen := s.peerGen
	peer, err := s.newPeer(s.hooks(gen))
	if err != nil {
		return err
	}
	s.peer = peer
	return nil
}

func (s *Session) closePeer() {
	if s.channel != nil {
		s.channel.MarkClosed()
		s.channel = nil
	}
	s.syncer.SetSender(nil)

	if s.peer == nil {
		return
	}
	if err := s.peer.Close(); err != nil {
		slog.Debug("closing peer connection", "err", err)
	}
	s.peer = nil
}

// hooks returns peer callbacks that hand their data to the loop. Callbacks
// from a peer other than the current one are dropped.
func (s *Session) hooks(gen int) negotiation.Hooks {
	current := func(fn func()) func() {
		return func() {
			if gen == s.peerGen && s.peer != nil {
				fn()
			}
		}
	}

	return negotiation.Hooks{
		OnICECandidate: func(c pion.ICECandidateInit) {
			s.post(current(func() { s.step(negotiation.LocalCandidate{Candidate: c}) }))
		},
		OnConnectionState: func(state pion.PeerConnectionState) {
			s.post(current(func() { s.step(negotiation.ConnectionStateChanged{State: state}) }))
		},
		OnChannel: func(ch *syncchan.Channel) {
			s.post(current(func() { s.channel = ch }))
		},
		OnChannelOpen: func() {
			s.post(current(s.channelOpened))
		},
		OnChannelMessage: func(data []byte) {
			s.post(current(func() { s.channelMessage(data) }))
		},
		OnChannelClose: func() {
			s.post(current(s.channelClosed))
		},
	}
}

func (s *Session) channelOpened() {
	if s.channel == nil {
		slog.Warn("channel opened before it was announced")
		return
	}
	s.channel.MarkOpen()
	s.syncer.SetSender(s.channel)
	slog.Info("sync channel open", "codec", s.channel.Codec())
	s.step(negotiation.ChannelOpened{})
}

func (s *Session) channelClosed() {
	if s.channel != nil {
		s.channel.MarkClosed()
	}
	s.view.Status("Data channel closed")
}

func (s *Session) channelMessage(data []byte) {
	if s.channel == nil {
		return
	}
	msg, err := s.channel.Decode(data)
	if err != nil {
		slog.Warn("bad sync message", "err", err)
		return
	}

	if chat, ok := msg.(*syncchan.Chat); ok {
		s.view.Chat(ChatLine{User: PeerLabel, Text: chat.Text, Timestamp: chat.Timestamp})
		return
	}

	if err := s.syncer.Handle(msg); err != nil {
		slog.Warn("sync message failed", "type", msg.Kind(), "err", err)
	}

	switch m := msg.(type) {
	case *syncchan.LoadVideo:
		s.view.VideoLoaded(m.VideoID, m.URL)
	case *syncchan.SyncResponse:
		s.view.VideoLoaded(m.VideoID, m.URL)
	}
}

func (s *Session) handlePlayerEvent(ev playback.Event) {
	if err := s.syncer.HandleEvent(ev); err != nil {
		slog.Warn("video-sync failed", "err", err)
	}
}

// schedule runs fn on the loop after d.
func (s *Session) schedule(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { s.post(fn) })
}

// post hands fn to the loop. It reports false once the session stopped.
func (s *Session) post(fn func()) bool {
	select {
	case s.queue <- fn:
		return true
	case <-s.done:
		return false
	}
}

// call runs fn on the loop and waits for its result.
func (s *Session) call(fn func() error) error {
	reply := make(chan error, 1)
	if !s.post(func() { reply <- fn() }) {
		return ErrClosed
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return ErrClosed
	}
}

// SendChat sends text to the peer and renders our own copy.
func (s *Session) SendChat(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return s.call(func() error {
		if !s.channel.IsOpen() {
			return NewError("chat", ErrChannelNotOpen)
		}
		msg := &syncchan.Chat{
			Text:      text,
			Timestamp: s.now().Format("15:04:05"),
			User:      s.name,
		}
		if err := s.channel.Send(msg); err != nil {
			return NewError("chat", err)
		}
		s.view.Chat(ChatLine{User: s.name, Text: text, Timestamp: msg.Timestamp, Local: true})
		return nil
	})
}

// LoadVideo loads url locally and on the peer. Malformed URLs are rejected
// without any state change.
func (s *Session) LoadVideo(url string) error {
	url = strings.TrimSpace(url)
	return s.call(func() error {
		id, err := s.syncer.LoadLocal(url)
		if errors.Is(err, playback.ErrInvalidVideoURL) {
			return WrapError("load video", ErrInvalidVideoURL, url)
		}
		if id != "" {
			s.view.VideoLoaded(id, url)
		}
		if err != nil {
			return NewError("load video", err)
		}
		return nil
	})
}

// Play starts local playback. The peer follows through the resulting state
// change.
func (s *Session) Play() error {
	return s.call(func() error {
		if s.player.VideoID() == "" {
			return NewError("play", ErrNoVideo)
		}
		s.player.PlayVideo()
		return nil
	})
}

func (s *Session) Pause() error {
	return s.call(func() error {
		if s.player.VideoID() == "" {
			return NewError("pause", ErrNoVideo)
		}
		s.player.PauseVideo()
		return nil
	})
}

func (s *Session) Seek(seconds float64) error {
	return s.call(func() error {
		if s.player.VideoID() == "" {
			return NewError("seek", ErrNoVideo)
		}
		if seconds < 0 {
			return WrapError("seek", errors.New("invalid position"), fmt.Sprint(seconds))
		}
		s.player.SeekTo(seconds, true)
		return nil
	})
}

// Snapshot returns the current state for display.
func (s *Session) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.call(func() error {
		snap = Snapshot{
			Role:        s.ctrl.Role(),
			State:       s.ctrl.State(),
			ChannelOpen: s.channel.IsOpen(),
			VideoID:     s.player.VideoID(),
			URL:         s.syncer.URL(),
			PlayerState: s.player.State(),
			Position:    s.player.CurrentTime(),
		}
		if s.channel != nil {
			snap.Codec = s.channel.Codec()
		}
		return nil
	})
	return snap, err
}
