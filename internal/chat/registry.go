package chat

import "github.com/google/uuid"

// Registry is the pub/sub fabric sessions publish through. Implementations
// hold no business logic; they only track group membership and deliver events.
// Sessions must not assume whether the fabric is in-process or network-backed.
type Registry interface {
	// Join adds the connection to the group. Idempotent.
	Join(group string, conn *Conn)

	// Leave removes the connection from the group. No-op if not a member.
	Leave(group string, conn *Conn)

	// Broadcast delivers the event to every connection currently in the group.
	// Best-effort; per-publisher FIFO.
	Broadcast(group string, event Event)

	// Unicast delivers the event to exactly one connection. Best-effort.
	Unicast(conn *Conn, event Event)
}

// connBuffer is the per-connection event queue size. Deliveries to a full
// queue are dropped rather than blocking the publisher.
const connBuffer = 16

// Conn is one live connection's mailbox. The transport owns the connection
// itself; the registry only references it while it is a group member.
type Conn struct {
	ID     string
	Events chan Event
}

// NewConn constructs a connection mailbox with a fresh identifier.
func NewConn() *Conn {
	return &Conn{
		ID:     uuid.NewString(),
		Events: make(chan Event, connBuffer),
	}
}
