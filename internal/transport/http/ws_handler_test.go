package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Second-Book/textbook-marketplace-backend/internal/auth"
	"github.com/Second-Book/textbook-marketplace-backend/internal/chat"
	"github.com/Second-Book/textbook-marketplace-backend/internal/config"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

func startTestServer(t *testing.T) (*httptest.Server, store.Store, *auth.Service) {
	t.Helper()

	st := createTestStore(t)
	authService := createTestAuthService(t, st, "test-secret")

	cfg := config.Default()
	server := NewServer(chat.NewHub(), authService, st, &cfg, testLogger())

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st, authService
}

func signupTestUser(t *testing.T, authService *auth.Service, username string) string {
	t.Helper()

	token, err := authService.Signup(context.Background(), username, username+"@example.com", "password123")
	if err != nil {
		t.Fatalf("signup %s: %v", username, err)
	}
	return token
}

func dialChat(t *testing.T, ctx context.Context, ts *httptest.Server, room, token string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/chat/" + room + "?token=" + token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", room, err)
	}
	return conn
}

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketRelaysRoomMessage(t *testing.T) {
	ts, st, authService := startTestServer(t)

	aliceToken := signupTestUser(t, authService, "alice")
	bobToken := signupTestUser(t, authService, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialChat(t, ctx, ts, "testroom", aliceToken)
	defer connA.Close(websocket.StatusNormalClosure, "done")

	connB := dialChat(t, ctx, ts, "testroom", bobToken)
	defer connB.Close(websocket.StatusNormalClosure, "done")

	if err := wsjson.Write(ctx, connA, map[string]string{
		"message":   "hi",
		"recipient": "bob",
	}); err != nil {
		t.Fatalf("write inbound: %v", err)
	}

	for name, conn := range map[string]*websocket.Conn{"alice": connA, "bob": connB} {
		var out ChatMessagePayload
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read outbound on %s: %v", name, err)
		}
		if out.Type != "chat_message" || out.Message != "hi" || out.Sender != "alice" || out.Recipient != "bob" {
			t.Fatalf("unexpected payload on %s: %+v", name, out)
		}
	}

	alice, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("load alice: %v", err)
	}
	msgs, err := st.ListMessagesForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Text != "hi" || msgs[0].Room != "testroom" {
		t.Fatalf("unexpected persisted messages: %+v", msgs)
	}
}

func TestWebSocketRejectsUnauthenticated(t *testing.T) {
	ts, _, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/chat/testroom"
	conn, resp, err := websocket.Dial(ctx, wsURL, nil)
	if err == nil {
		conn.Close(websocket.StatusNormalClosure, "done")
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestWebSocketBlockedSenderGetsNotification(t *testing.T) {
	ts, st, authService := startTestServer(t)

	aliceToken := signupTestUser(t, authService, "alice")
	signupTestUser(t, authService, "bob")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("load alice: %v", err)
	}
	bob, err := st.GetUserByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("load bob: %v", err)
	}
	if _, err := st.CreateBlock(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("create block: %v", err)
	}

	connA := dialChat(t, ctx, ts, "testroom", aliceToken)
	defer connA.Close(websocket.StatusNormalClosure, "done")

	if err := wsjson.Write(ctx, connA, map[string]string{
		"message":   "hello?",
		"recipient": "bob",
	}); err != nil {
		t.Fatalf("write inbound: %v", err)
	}

	var out NotificationPayload
	if err := wsjson.Read(ctx, connA, &out); err != nil {
		t.Fatalf("read outbound: %v", err)
	}
	if out.Type != "notification" || out.Message != "You cannot message this user due to block." {
		t.Fatalf("unexpected payload: %+v", out)
	}

	msgs, err := st.ListMessagesForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("blocked message must not be persisted, got %+v", msgs)
	}
}
