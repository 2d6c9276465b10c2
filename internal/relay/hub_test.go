package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func newTestClient(h *Hub, id string) *Client {
	c := &Client{ID: id, Hub: h, Send: make(chan *Message, 16)}
	h.clients[c] = struct{}{}
	return c
}

func recv(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	default:
		t.Fatalf("client %s: expected a message, got none", c.ID)
		return nil
	}
}

func expectNone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("client %s: expected no message, got %q", c.ID, msg.Type)
	default:
	}
}

func joinMsg(c *Client, room string) *Message {
	return &Message{Type: TypeJoin, RoomID: room, ClientType: "cli", client: c}
}

func TestJoin_FirstMemberCreates(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")

	h.handle(joinMsg(a, "room"))

	msg := recv(t, a)
	if msg.Type != TypeCreated || msg.RoomID != "room" {
		t.Fatalf("expected created for room, got %+v", msg)
	}
	expectNone(t, a)

	if got := h.Rooms["room"].Size(); got != 1 {
		t.Errorf("expected 1 member, got %d", got)
	}
}

func TestJoin_SecondMemberJoinsThenReadyToBoth(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")

	h.handle(joinMsg(a, "room"))
	recv(t, a)

	h.handle(&Message{Type: TypeJoin, RoomID: "room", ClientType: "web", client: b})

	if msg := recv(t, b); msg.Type != TypeJoined {
		t.Fatalf("expected joined first, got %q", msg.Type)
	}

	readyB := recv(t, b)
	if readyB.Type != TypeReady {
		t.Fatalf("expected ready for b, got %q", readyB.Type)
	}
	var info PeerInfo
	if err := json.Unmarshal(readyB.Payload, &info); err != nil {
		t.Fatalf("failed to decode ready payload: %v", err)
	}
	if info.ClientType != "cli" {
		t.Errorf("b should learn a is cli, got %q", info.ClientType)
	}

	readyA := recv(t, a)
	if readyA.Type != TypeReady {
		t.Fatalf("expected ready for a, got %q", readyA.Type)
	}
	if err := json.Unmarshal(readyA.Payload, &info); err != nil {
		t.Fatalf("failed to decode ready payload: %v", err)
	}
	if info.ClientType != "web" {
		t.Errorf("a should learn b is web, got %q", info.ClientType)
	}
}

func TestJoin_ThirdMemberGetsFullWithoutMutation(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")
	c := newTestClient(h, "c")

	h.handle(joinMsg(a, "room"))
	h.handle(joinMsg(b, "room"))
	for len(a.Send) > 0 {
		<-a.Send
	}
	for len(b.Send) > 0 {
		<-b.Send
	}

	for range 3 {
		h.handle(joinMsg(c, "room"))
		if msg := recv(t, c); msg.Type != TypeFull {
			t.Fatalf("expected full, got %q", msg.Type)
		}
	}

	room := h.Rooms["room"]
	if room.Size() != 2 {
		t.Fatalf("expected 2 members, got %d", room.Size())
	}
	if room.Has(c) {
		t.Error("rejected client must not be a member")
	}
	if c.RoomID != "" {
		t.Errorf("rejected client should have no room, got %q", c.RoomID)
	}
	expectNone(t, a)
	expectNone(t, b)
}

func TestRelay_ForwardsUnmodifiedToOtherMemberOnly(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")
	outsider := newTestClient(h, "x")

	h.handle(joinMsg(a, "room"))
	h.handle(joinMsg(b, "room"))
	h.handle(joinMsg(outsider, "other"))
	for _, c := range []*Client{a, b, outsider} {
		for len(c.Send) > 0 {
			<-c.Send
		}
	}

	for _, kind := range []string{TypeOffer, TypeAnswer, TypeCandidate} {
		payload := json.RawMessage(`{"sdp":"v=0 opaque","weird":[1,2,3]}`)
		h.handle(&Message{Type: kind, RoomID: "room", Payload: payload, client: a})

		got := recv(t, b)
		if got.Type != kind {
			t.Errorf("expected %s, got %s", kind, got.Type)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Errorf("payload modified: %s", got.Payload)
		}
		expectNone(t, a)
		expectNone(t, outsider)
	}
}

func TestRelay_SenderNotInRoomIsNoop(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")
	x := newTestClient(h, "x")

	h.handle(joinMsg(a, "room"))
	h.handle(joinMsg(b, "room"))
	for len(a.Send) > 0 {
		<-a.Send
	}
	for len(b.Send) > 0 {
		<-b.Send
	}

	h.handle(&Message{Type: TypeOffer, RoomID: "room", Payload: json.RawMessage(`{}`), client: x})
	h.handle(&Message{Type: TypeOffer, RoomID: "missing", Payload: json.RawMessage(`{}`), client: a})

	expectNone(t, a)
	expectNone(t, b)
	expectNone(t, x)
}

func TestUnregister_NotifiesRemainingPeerAndCleansUp(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")

	h.handle(joinMsg(a, "room"))
	h.handle(joinMsg(b, "room"))
	for len(a.Send) > 0 {
		<-a.Send
	}
	for len(b.Send) > 0 {
		<-b.Send
	}

	h.unregister(b)

	if msg := recv(t, a); msg.Type != TypePeerLeft {
		t.Fatalf("expected peer-left, got %q", msg.Type)
	}
	if _, ok := <-b.Send; ok {
		t.Error("expected b's send channel to be closed")
	}
	if got := h.Rooms["room"].Size(); got != 1 {
		t.Errorf("expected 1 member left, got %d", got)
	}

	h.unregister(a)
	if _, ok := h.Rooms["room"]; ok {
		t.Error("expected empty room to be deleted")
	}

	// The room starts over once it empties.
	c := newTestClient(h, "c")
	h.handle(joinMsg(c, "room"))
	if msg := recv(t, c); msg.Type != TypeCreated {
		t.Errorf("expected created after room emptied, got %q", msg.Type)
	}
}

func TestJoin_SwitchingRoomsLeavesPrevious(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")

	h.handle(joinMsg(a, "one"))
	h.handle(joinMsg(b, "one"))
	for len(a.Send) > 0 {
		<-a.Send
	}
	for len(b.Send) > 0 {
		<-b.Send
	}

	h.handle(joinMsg(b, "two"))

	if msg := recv(t, a); msg.Type != TypePeerLeft {
		t.Errorf("expected peer-left for a, got %q", msg.Type)
	}
	if msg := recv(t, b); msg.Type != TypeCreated || msg.RoomID != "two" {
		t.Errorf("expected created for two, got %+v", msg)
	}
	if h.Rooms["one"].Has(b) {
		t.Error("b should no longer be in room one")
	}
}

func TestJoin_FullTargetKeepsCurrentRoom(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")
	c := newTestClient(h, "c")
	d := newTestClient(h, "d")

	h.handle(joinMsg(a, "one"))
	h.handle(joinMsg(b, "one"))
	h.handle(joinMsg(c, "two"))
	h.handle(joinMsg(d, "two"))
	for _, cl := range []*Client{a, b, c, d} {
		for len(cl.Send) > 0 {
			<-cl.Send
		}
	}

	h.handle(joinMsg(a, "two"))

	if msg := recv(t, a); msg.Type != TypeFull {
		t.Fatalf("expected full, got %q", msg.Type)
	}
	if a.RoomID != "one" || !h.Rooms["one"].Has(a) {
		t.Errorf("a should still be in room one, got %q", a.RoomID)
	}
	if h.Rooms["two"].Has(a) {
		t.Error("a must not be admitted to room two")
	}
	for _, cl := range []*Client{b, c, d} {
		expectNone(t, cl)
	}
}

func TestJoin_SameRoomAgainIsNoop(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")

	h.handle(joinMsg(a, "room"))
	h.handle(joinMsg(b, "room"))
	for len(a.Send) > 0 {
		<-a.Send
	}
	for len(b.Send) > 0 {
		<-b.Send
	}

	h.handle(joinMsg(b, "room"))

	expectNone(t, a)
	expectNone(t, b)
	if h.Rooms["room"].Size() != 2 {
		t.Errorf("expected 2 members, got %d", h.Rooms["room"].Size())
	}
}

func TestJoin_EmptyRoomIDIsRejected(t *testing.T) {
	h := NewHub()
	a := newTestClient(h, "a")

	h.handle(joinMsg(a, ""))

	if msg := recv(t, a); msg.Type != TypeError {
		t.Fatalf("expected error, got %q", msg.Type)
	}
	if len(h.Rooms) != 0 {
		t.Errorf("expected no rooms, got %d", len(h.Rooms))
	}
}

func TestRun_StatsAndShutdown(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	a := &Client{ID: "a", Hub: h, Send: make(chan *Message, 16)}
	h.Register <- a
	h.Inbound <- joinMsg(a, "room")

	statsCtx, statsCancel := context.WithTimeout(context.Background(), time.Second)
	defer statsCancel()
	stats, err := h.Stats(statsCtx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Rooms != 1 || stats.Connections != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}
