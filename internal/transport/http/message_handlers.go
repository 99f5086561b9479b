package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// MessageHandlers provides HTTP handlers for chat message history.
type MessageHandlers struct {
	store store.MessageStore
	log   *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(messageStore store.MessageStore, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		store: messageStore,
		log:   logger,
	}
}

// MessageHistoryResponse represents a persisted message in API responses.
type MessageHistoryResponse struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender"`
	RecipientID int64     `json:"recipient"`
	Room        string    `json:"room"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sent_at"`
}

// List returns all messages where the caller is sender or recipient.
// GET /api/messages
func (h *MessageHandlers) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	messages, err := h.store.ListMessagesForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, MessageHistoryResponse{
			ID:          msg.ID,
			SenderID:    msg.SenderID,
			RecipientID: msg.RecipientID,
			Room:        msg.Room,
			Text:        msg.Text,
			SentAt:      msg.SentAt,
		})
	}

	c.JSON(http.StatusOK, response)
}
