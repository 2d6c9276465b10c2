package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/Alaminislam-stack/wash2gather/internal/negotiation"
	"github.com/Alaminislam-stack/wash2gather/internal/signaling"
	"github.com/Alaminislam-stack/wash2gather/internal/syncchan"
)

// fakeNetwork links fake peers once both sides hold a local and a remote
// description, then opens the sync channel on both ends.
type fakeNetwork struct {
	mu    sync.Mutex
	peers []*fakePeer
}

func (n *fakeNetwork) factory() PeerFactory {
	return func(hooks negotiation.Hooks) (negotiation.Peer, error) {
		p := &fakePeer{net: n, hooks: hooks}
		n.mu.Lock()
		n.peers = append(n.peers, p)
		n.mu.Unlock()
		return p, nil
	}
}

func (n *fakeNetwork) maybeLink(p *fakePeer) {
	n.mu.Lock()
	if !p.complete() || p.other != nil {
		n.mu.Unlock()
		return
	}
	var other *fakePeer
	for _, q := range n.peers {
		if q != p && q.other == nil && q.complete() {
			other = q
		}
	}
	if other == nil {
		n.mu.Unlock()
		return
	}
	p.other, other.other = other, p

	initiator, responder := p, other
	if !p.hasChannel {
		initiator, responder = other, p
	}
	responder.codec = initiator.codec
	n.mu.Unlock()

	go func() {
		responder.hooks.OnChannel(syncchan.NewChannel(&wire{from: responder}, responder.codec))
		for _, q := range []*fakePeer{initiator, responder} {
			q.hooks.OnConnectionState(pion.PeerConnectionStateConnected)
			q.hooks.OnChannelOpen()
		}
	}()
}

type fakePeer struct {
	net   *fakeNetwork
	hooks negotiation.Hooks

	// Guarded by net.mu.
	local, remote *pion.SessionDescription
	hasChannel    bool
	codec         syncchan.Codec
	other         *fakePeer
	closed        bool
	added         []pion.ICECandidateInit
}

func (p *fakePeer) complete() bool {
	return !p.closed && p.local != nil && p.remote != nil
}

func (p *fakePeer) CreateChannel(codec syncchan.Codec) error {
	p.net.mu.Lock()
	p.hasChannel = true
	p.codec = codec
	p.net.mu.Unlock()

	p.hooks.OnChannel(syncchan.NewChannel(&wire{from: p}, codec))
	return nil
}

func (p *fakePeer) CreateOffer() (pion.SessionDescription, error) {
	desc := pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: "v=0 fake offer"}
	p.net.mu.Lock()
	p.local = &desc
	p.net.mu.Unlock()

	go p.hooks.OnICECandidate(pion.ICECandidateInit{Candidate: "candidate:1 1 udp 1 192.0.2.1 5000 typ host"})
	return desc, nil
}

func (p *fakePeer) CreateAnswer() (pion.SessionDescription, error) {
	p.net.mu.Lock()
	if p.remote == nil {
		p.net.mu.Unlock()
		return pion.SessionDescription{}, errors.New("no remote offer")
	}
	desc := pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: "v=0 fake answer"}
	p.local = &desc
	p.net.mu.Unlock()

	p.net.maybeLink(p)
	return desc, nil
}

func (p *fakePeer) SetRemoteDescription(desc pion.SessionDescription) error {
	p.net.mu.Lock()
	p.remote = &desc
	p.net.mu.Unlock()

	p.net.maybeLink(p)
	return nil
}

func (p *fakePeer) AddICECandidate(c pion.ICECandidateInit) error {
	p.net.mu.Lock()
	defer p.net.mu.Unlock()
	if p.remote == nil {
		return errors.New("candidate before remote description")
	}
	p.added = append(p.added, c)
	return nil
}

func (p *fakePeer) Close() error {
	p.net.mu.Lock()
	p.closed = true
	other := p.other
	p.net.mu.Unlock()

	if other != nil {
		go other.hooks.OnChannelClose()
	}
	return nil
}

// wire is the sync channel transport between two linked fake peers.
type wire struct {
	from *fakePeer
}

func (w *wire) Send(data []byte) error {
	w.from.net.mu.Lock()
	other := w.from.other
	w.from.net.mu.Unlock()
	if other == nil {
		return errors.New("not linked")
	}
	other.hooks.OnChannelMessage(append([]byte(nil), data...))
	return nil
}

func (w *wire) SendText(s string) error {
	return w.Send([]byte(s))
}

type fakeView struct {
	mu       sync.Mutex
	statuses []string
	chats    []ChatLine
	videos   []string
	errs     []error
}

func (v *fakeView) Status(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statuses = append(v.statuses, text)
}

func (v *fakeView) Chat(line ChatLine) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.chats = append(v.chats, line)
}

func (v *fakeView) VideoLoaded(videoID, _ string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.videos = append(v.videos, videoID)
}

func (v *fakeView) Error(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errs = append(v.errs, err)
}

func (v *fakeView) hasStatus(text string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, s := range v.statuses {
		if s == text {
			return true
		}
	}
	return false
}

func (v *fakeView) chatLines() []ChatLine {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]ChatLine(nil), v.chats...)
}

func (v *fakeView) hasError(target error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, err := range v.errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fakeSignaler records outbound messages and lets tests inject inbound ones.
type fakeSignaler struct {
	mu       sync.Mutex
	sent     []*signaling.Message
	incoming chan *signaling.Message
}

func newFakeSignaler() *fakeSignaler {
	return &fakeSignaler{incoming: make(chan *signaling.Message, 16)}
}

func (f *fakeSignaler) Send(msg *signaling.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSignaler) Incoming() <-chan *signaling.Message {
	return f.incoming
}

func (f *fakeSignaler) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, msg := range f.sent {
		if msg.Type == kind {
			n++
		}
	}
	return n
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
