package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

func newTestSession(t *testing.T, s store.Store, hub *Hub, username, room string) *Session {
	t.Helper()

	user, err := s.GetUserByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("get user %s: %v", username, err)
	}

	gate := NewGate(s, s, BlockEitherDirection)
	sess := NewSession(user, room, NewConn(), hub, gate, s, zerolog.Nop())
	if err := sess.Connect(); err != nil {
		t.Fatalf("connect %s: %v", username, err)
	}
	t.Cleanup(sess.Disconnect)

	return sess
}

func mustChatMessage(t *testing.T, conn *Conn) ChatMessage {
	t.Helper()

	select {
	case ev := <-conn.Events:
		msg, ok := ev.(ChatMessage)
		if !ok {
			t.Fatalf("expected ChatMessage, got %+v", ev)
		}
		return msg
	default:
		t.Fatalf("expected event on connection %s", conn.ID)
		return ChatMessage{}
	}
}

func mustNotification(t *testing.T, conn *Conn) Notification {
	t.Helper()

	select {
	case ev := <-conn.Events:
		n, ok := ev.(Notification)
		if !ok {
			t.Fatalf("expected Notification, got %+v", ev)
		}
		return n
	default:
		t.Fatalf("expected notification on connection %s", conn.ID)
		return Notification{}
	}
}

func mustNoEvent(t *testing.T, conn *Conn) {
	t.Helper()

	select {
	case ev := <-conn.Events:
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

func TestSessionConnectDisconnectMembership(t *testing.T) {
	s := newGateStore(t)
	gateUser(t, s, "alice")
	hub := NewHub()

	sess := newTestSession(t, s, hub, "alice", "testroom")
	if hub.Members("chat_testroom") != 1 {
		t.Fatalf("expected membership after connect")
	}

	sess.Disconnect()
	if hub.Members("chat_testroom") != 0 {
		t.Fatalf("expected no membership after disconnect")
	}

	// Second disconnect is a no-op.
	sess.Disconnect()
	if hub.Members("chat_testroom") != 0 {
		t.Fatalf("expected disconnect to stay idempotent")
	}
}

func TestSessionDisconnectWithoutConnect(t *testing.T) {
	s := newGateStore(t)
	alice := gateUser(t, s, "alice")
	hub := NewHub()

	gate := NewGate(s, s, BlockEitherDirection)
	sess := NewSession(alice, "testroom", NewConn(), hub, gate, s, zerolog.Nop())

	// No Connect happened; Disconnect must not panic or leave residue.
	sess.Disconnect()
	if hub.Members("chat_testroom") != 0 {
		t.Fatalf("expected no membership")
	}
}

func TestSessionRejectsBadRoomName(t *testing.T) {
	s := newGateStore(t)
	alice := gateUser(t, s, "alice")

	gate := NewGate(s, s, BlockEitherDirection)
	sess := NewSession(alice, "bad room", NewConn(), NewHub(), gate, s, zerolog.Nop())

	if err := sess.Connect(); !errors.Is(err, ErrBadRoomName) {
		t.Fatalf("expected ErrBadRoomName, got %v", err)
	}
}

func TestSessionRelayReachesWholeRoom(t *testing.T) {
	s := newGateStore(t)
	ctx := context.Background()

	gateUser(t, s, "alice")
	bob := gateUser(t, s, "bob")
	hub := NewHub()

	aliceSess := newTestSession(t, s, hub, "alice", "testroom")
	bobSess := newTestSession(t, s, hub, "bob", "testroom")

	if err := aliceSess.HandleInbound(ctx, []byte(`{"message":"hi","recipient":"bob"}`)); err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	for _, sess := range []*Session{aliceSess, bobSess} {
		msg := mustChatMessage(t, sess.Conn())
		if msg.Message != "hi" || msg.Sender != "alice" || msg.Recipient != "bob" {
			t.Fatalf("unexpected broadcast: %+v", msg)
		}
	}

	// Exactly one message row persisted.
	rows, err := s.ListMessagesForUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListMessagesForUser: %v", err)
	}
	if len(rows) != 1 || rows[0].Text != "hi" || rows[0].Room != "testroom" {
		t.Fatalf("unexpected persisted messages: %+v", rows)
	}
}

func TestSessionBlockedSenderGetsPrivateNotification(t *testing.T) {
	s := newGateStore(t)
	ctx := context.Background()

	blocker := gateUser(t, s, "blocker")
	blocked := gateUser(t, s, "blocked")
	if _, err := s.CreateBlock(ctx, blocker.ID, blocked.ID); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	hub := NewHub()
	blockerSess := newTestSession(t, s, hub, "blocker", "room1")
	blockedSess := newTestSession(t, s, hub, "blocked", "room1")

	if err := blockedSess.HandleInbound(ctx, []byte(`{"message":"hey","recipient":"blocker"}`)); err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	n := mustNotification(t, blockedSess.Conn())
	if n.Message != "You cannot message this user due to block." {
		t.Fatalf("unexpected denial text: %q", n.Message)
	}

	// The room, including the blocker, sees nothing.
	mustNoEvent(t, blockerSess.Conn())

	rows, err := s.ListMessagesForUser(ctx, blocked.ID)
	if err != nil {
		t.Fatalf("ListMessagesForUser: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no persisted message, got %+v", rows)
	}
}

func TestSessionRecipientNotFoundNotifiesSender(t *testing.T) {
	s := newGateStore(t)
	gateUser(t, s, "alice")
	hub := NewHub()

	sess := newTestSession(t, s, hub, "alice", "testroom")

	if err := sess.HandleInbound(context.Background(), []byte(`{"message":"hi","recipient":"ghost"}`)); err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}

	n := mustNotification(t, sess.Conn())
	if n.Message != "Recipient does not exist." {
		t.Fatalf("unexpected notification: %q", n.Message)
	}
}

func TestSessionMalformedPayloadNotifiesSender(t *testing.T) {
	s := newGateStore(t)
	gateUser(t, s, "alice")
	hub := NewHub()

	sess := newTestSession(t, s, hub, "alice", "testroom")

	for _, raw := range []string{`not json`, `{"recipient":"bob"}`} {
		if err := sess.HandleInbound(context.Background(), []byte(raw)); err != nil {
			t.Fatalf("HandleInbound(%q): %v", raw, err)
		}
		n := mustNotification(t, sess.Conn())
		if n.Message != "Invalid message payload." {
			t.Fatalf("unexpected notification for %q: %q", raw, n.Message)
		}
	}
}

func TestSessionPreservesSenderOrder(t *testing.T) {
	s := newGateStore(t)
	ctx := context.Background()

	gateUser(t, s, "alice")
	gateUser(t, s, "bob")
	hub := NewHub()

	aliceSess := newTestSession(t, s, hub, "alice", "testroom")
	bobSess := newTestSession(t, s, hub, "bob", "testroom")

	if err := aliceSess.HandleInbound(ctx, []byte(`{"message":"m1","recipient":"bob"}`)); err != nil {
		t.Fatalf("HandleInbound m1: %v", err)
	}
	if err := aliceSess.HandleInbound(ctx, []byte(`{"message":"m2","recipient":"bob"}`)); err != nil {
		t.Fatalf("HandleInbound m2: %v", err)
	}

	first := mustChatMessage(t, bobSess.Conn())
	second := mustChatMessage(t, bobSess.Conn())
	if first.Message != "m1" || second.Message != "m2" {
		t.Fatalf("expected m1 then m2, got %q then %q", first.Message, second.Message)
	}
}

// failingMessageStore simulates an unavailable persistence collaborator.
type failingMessageStore struct{}

func (failingMessageStore) CreateMessage(context.Context, *store.Message) (*store.Message, error) {
	return nil, errors.New("store unavailable")
}

func (failingMessageStore) ListMessagesForUser(context.Context, int64) ([]*store.Message, error) {
	return nil, errors.New("store unavailable")
}

func TestSessionPersistenceFailureIsFatal(t *testing.T) {
	s := newGateStore(t)
	alice := gateUser(t, s, "alice")
	gateUser(t, s, "bob")
	hub := NewHub()

	gate := NewGate(s, s, BlockEitherDirection)
	sess := NewSession(alice, "testroom", NewConn(), hub, gate, failingMessageStore{}, zerolog.Nop())
	if err := sess.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer sess.Disconnect()

	err := sess.HandleInbound(context.Background(), []byte(`{"message":"hi","recipient":"bob"}`))
	if err == nil {
		t.Fatalf("expected persistence failure to surface")
	}

	// Nothing was broadcast for the failed message.
	mustNoEvent(t, sess.Conn())
}
