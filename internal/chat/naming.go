package chat

import "regexp"

// groupPrefix namespaces room groups inside the registry, so room identifiers
// can never collide with other group kinds.
const groupPrefix = "chat_"

var roomNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// ValidRoomName reports whether the client-supplied room name is acceptable.
func ValidRoomName(room string) bool {
	return roomNamePattern.MatchString(room)
}

// GroupName derives the registry group for a room. Injective for distinct
// valid room names.
func GroupName(room string) string {
	return groupPrefix + room
}
