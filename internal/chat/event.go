package chat

import "chat-client/internal/models"

// EventKind tags an Event delivered to subscribers.
type EventKind int

const (
	// Lifecycle events originated by the connection itself.
	EventConnected EventKind = iota
	EventDisconnected
	EventConnectionFailed

	// Wire events decoded from server frames.
	EventHistory
	EventMessage
	EventTyping
	EventStopTyping
	EventUserStatus
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventConnectionFailed:
		return "connection_failed"
	case EventHistory:
		return "previousMessages"
	case EventMessage:
		return "newMessage"
	case EventTyping:
		return "typing"
	case EventStopTyping:
		return "stopTyping"
	case EventUserStatus:
		return "userStatus"
	}
	return "unknown"
}

// Event is the tagged union dispatched to subscribers. Exactly the fields
// relevant to Kind are populated.
type Event struct {
	Kind    EventKind
	Reason  string               // Disconnected, ConnectionFailed
	Message *models.ChatMessage  // Message
	History []models.ChatMessage // History
	Status  *models.UserStatus   // UserStatus
	UserID  string               // Typing, StopTyping subject
}

// Handler receives every event published by a Conn. Handlers run on the
// connection's read goroutine, in transport delivery order.
type Handler func(Event)
