package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/auth"
	"github.com/Second-Book/textbook-marketplace-backend/internal/chat"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// WSHandler upgrades chat connections and bridges them to chat.Session.
type WSHandler struct {
	registry    chat.Registry
	authService *auth.Service
	store       store.Store
	gate        *chat.Gate
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler over the chat registry.
func NewWSHandler(registry chat.Registry, authService *auth.Service, st store.Store, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry:    registry,
		authService: authService,
		store:       st,
		gate:        chat.NewGate(st, st, chat.BlockEitherDirection),
		log:         logger,
	}
}

// Serve handles GET /ws/chat/:room. Authentication happens before the
// upgrade so unauthenticated clients get a plain 401 instead of a
// half-open websocket.
func (h *WSHandler) Serve(c *gin.Context) {
	room := c.Param("room")

	user, ok := h.authenticate(c)
	if !ok {
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess := chat.NewSession(user, room, chat.NewConn(), h.registry, h.gate, h.store, *h.log)
	if err := sess.Connect(); err != nil {
		h.log.Warn().Err(err).Str("room", room).Msg("ws connect rejected")
		conn.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	defer sess.Disconnect()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sess.Conn())
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// authenticate resolves the caller from a ?token= query parameter or a
// Bearer header. Writes the 401 response itself when it fails.
func (h *WSHandler) authenticate(c *gin.Context) (*store.User, bool) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		c.JSON(stdhttp.StatusUnauthorized, ErrorResponse{Error: "missing token"})
		return nil, false
	}

	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws token rejected")
		c.JSON(stdhttp.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
		return nil, false
	}

	user, err := h.store.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Debug().Err(err).Int64("user_id", claims.UserID).Msg("ws user lookup failed")
		c.JSON(stdhttp.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
		return nil, false
	}

	return user, true
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *chat.Session) error {
	for {
		_, raw, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if err := sess.HandleInbound(ctx, raw); err != nil {
			h.log.Error().Err(err).Msg("ws inbound failed")
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, mailbox *chat.Conn) error {
	for {
		select {
		case event, ok := <-mailbox.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", mailbox.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
