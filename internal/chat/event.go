package chat

// Event is a closed set of payloads delivered to connections. Each variant
// carries everything the transport needs to render it; there is no string-keyed
// dispatch beyond the wire tag emitted at the boundary.
type Event interface {
	// Tag is the wire-level event type.
	Tag() string
}

// ChatMessage is fanned out to every member of a room group.
type ChatMessage struct {
	Message   string
	Sender    string
	Recipient string
}

// Notification is delivered to exactly one connection, never to the room.
type Notification struct {
	Message string
}

func (ChatMessage) Tag() string  { return "chat_message" }
func (Notification) Tag() string { return "notification" }
