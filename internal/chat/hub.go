package chat

import "sync"

// Hub is the in-memory Registry for single-process deployments. Group
// membership is the only structure mutated by concurrent sessions, so a single
// RWMutex over the group map is enough.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Conn]struct{}
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{
		groups: make(map[string]map[*Conn]struct{}),
	}
}

// Join adds the connection to the group, creating the group on first join.
// Re-joining is a no-op.
func (h *Hub) Join(group string, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Conn]struct{})
		h.groups[group] = members
	}
	members[conn] = struct{}{}
}

// Leave removes the connection from the group. The group itself is dropped
// once its last member leaves, so a room exists only while it is populated.
func (h *Hub) Leave(group string, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Broadcast delivers the event to every current member of the group.
func (h *Hub) Broadcast(group string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.groups[group] {
		deliver(conn, event)
	}
}

// Unicast delivers the event to a single connection.
func (h *Hub) Unicast(conn *Conn, event Event) {
	deliver(conn, event)
}

// Members reports the current size of a group.
func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.groups[group])
}

func deliver(conn *Conn, event Event) {
	select {
	case conn.Events <- event:
	default:
		// Drop if slow consumer.
	}
}
