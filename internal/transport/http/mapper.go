package http

import (
	"github.com/Second-Book/textbook-marketplace-backend/internal/chat"
)

// ChatMessagePayload is the wire shape of a relayed room message.
type ChatMessagePayload struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
}

// NotificationPayload is the wire shape of a private notification.
type NotificationPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func outboundFromEvent(event chat.Event) any {
	switch e := event.(type) {
	case chat.ChatMessage:
		return ChatMessagePayload{
			Type:      e.Tag(),
			Message:   e.Message,
			Sender:    e.Sender,
			Recipient: e.Recipient,
		}
	case chat.Notification:
		return NotificationPayload{
			Type:    e.Tag(),
			Message: e.Message,
		}
	default:
		return NotificationPayload{Type: event.Tag()}
	}
}
