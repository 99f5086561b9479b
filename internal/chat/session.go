package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// Texts sent back to the originating connection as private notifications.
const (
	blockedText    = "You cannot message this user due to block."
	notFoundText   = "Recipient does not exist."
	badPayloadText = "Invalid message payload."
)

// ErrBadRoomName rejects a connect attempt for a room name the registry
// cannot derive a group from.
var ErrBadRoomName = errors.New("invalid room name")

// Session owns one live connection for its whole lifetime: it joins the room
// group on Connect, relays inbound messages through the gate, and guarantees a
// single Leave on teardown no matter how the connection ends.
//
// The session is constructed with its authenticated identity and room; it
// never reaches into ambient request state afterwards.
type Session struct {
	user     *store.User
	room     string
	group    string
	conn     *Conn
	registry Registry
	gate     *Gate
	messages store.MessageStore
	log      zerolog.Logger

	leaveOnce sync.Once
}

// NewSession builds a session for an authenticated user entering a room.
func NewSession(user *store.User, room string, conn *Conn, registry Registry, gate *Gate, messages store.MessageStore, logger zerolog.Logger) *Session {
	return &Session{
		user:     user,
		room:     room,
		group:    GroupName(room),
		conn:     conn,
		registry: registry,
		gate:     gate,
		messages: messages,
		log:      logger.With().Str("user", user.Username).Str("room", room).Logger(),
	}
}

// Conn returns the session's connection mailbox.
func (s *Session) Conn() *Conn {
	return s.conn
}

// Connect validates the room and joins its group.
func (s *Session) Connect() error {
	if !ValidRoomName(s.room) {
		return ErrBadRoomName
	}
	s.registry.Join(s.group, s.conn)
	s.log.Debug().Msg("session joined room")
	return nil
}

// Disconnect leaves the room group. Safe to call from any state, any number
// of times, including when Connect never succeeded.
func (s *Session) Disconnect() {
	s.leaveOnce.Do(func() {
		s.registry.Leave(s.group, s.conn)
		s.log.Debug().Msg("session left room")
	})
}

// inboundMessage is the wire shape of a client frame. Message is a pointer so
// a frame without the key can be told apart from an empty string.
type inboundMessage struct {
	Message   *string `json:"message"`
	Recipient string  `json:"recipient"`
}

// HandleInbound processes one inbound frame. Policy outcomes and per-message
// errors are reported to the sender as private notifications and leave the
// session running; a non-nil return is fatal to this connection only.
func (s *Session) HandleInbound(ctx context.Context, raw []byte) error {
	var in inboundMessage
	if err := json.Unmarshal(raw, &in); err != nil || in.Message == nil {
		s.log.Debug().Msg("malformed inbound payload")
		s.registry.Unicast(s.conn, Notification{Message: badPayloadText})
		return nil
	}

	recipient, err := s.gate.Authorize(ctx, s.user, in.Recipient)
	switch {
	case err == nil:
	case errors.Is(err, ErrBlocked):
		s.registry.Unicast(s.conn, Notification{Message: blockedText})
		return nil
	case errors.Is(err, ErrRecipientNotFound):
		s.registry.Unicast(s.conn, Notification{Message: notFoundText})
		return nil
	default:
		return fmt.Errorf("authorize: %w", err)
	}

	if _, err := s.messages.CreateMessage(ctx, &store.Message{
		SenderID:    s.user.ID,
		RecipientID: recipient.ID,
		Room:        s.room,
		Text:        *in.Message,
		SentAt:      time.Now().UTC(),
	}); err != nil {
		// Silent drop would desynchronize the sender's expectation of
		// delivery, so persistence failure ends the session.
		return fmt.Errorf("persist message: %w", err)
	}

	s.registry.Broadcast(s.group, ChatMessage{
		Message:   *in.Message,
		Sender:    s.user.Username,
		Recipient: recipient.Username,
	})
	return nil
}
