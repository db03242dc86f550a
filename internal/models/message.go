package models

import "time"

// ChatMessage is a single message in a buyer-seller conversation.
// JSON field names follow the chat server's wire contract.
type ChatMessage struct {
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message"`
	ProductID  string    `json:"productId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoomIdentity is the (buyer, seller, product) triple a conversation is
// keyed by on the server. It is fixed for the lifetime of a session.
type RoomIdentity struct {
	UserID    string `json:"userId"`
	SellerID  string `json:"sellerId"`
	ProductID string `json:"productId"`
}

// UserStatus is the server-pushed presence snapshot for one user.
type UserStatus struct {
	UserID   string     `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}
