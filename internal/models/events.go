package models

// Wire event names. These are the server contract and must not be renamed.
const (
	EventJoinRoom         = "joinRoom"
	EventSendMessage      = "sendMessage"
	EventTyping           = "typing"
	EventStopTyping       = "stopTyping"
	EventPreviousMessages = "previousMessages"
	EventNewMessage       = "newMessage"
	EventUserStatus       = "userStatus"
)

// TypingInfo carries a typing / stopTyping payload. ReceiverID is set only
// on outbound frames; inbound frames identify just the typing subject.
type TypingInfo struct {
	UserID     string `json:"userId"`
	ReceiverID string `json:"receiverId,omitempty"`
}

// ChatEvent is the JSON envelope exchanged over the websocket, one event
// per text frame, tagged by Type.
type ChatEvent struct {
	Type     string        `json:"type"`
	Message  *ChatMessage  `json:"message,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
	Room     *RoomIdentity `json:"room,omitempty"`
	Typing   *TypingInfo   `json:"typing,omitempty"`
	Status   *UserStatus   `json:"status,omitempty"`
}
