package identity

import (
	"context"
	"errors"
	"os"
)

// ErrGuest means there is no authenticated user. Guests never open a
// chat connection.
var ErrGuest = errors.New("guest session")

// Source yields the current authenticated user's id. The real storefront
// backs this with its auth service; the chat subsystem only depends on
// the contract.
type Source interface {
	CurrentUser(ctx context.Context) (string, error)
}

// EnvSource resolves the user from the environment. Key defaults to
// CHAT_USER_ID.
type EnvSource struct {
	Key string
}

func (s EnvSource) CurrentUser(ctx context.Context) (string, error) {
	key := s.Key
	if key == "" {
		key = "CHAT_USER_ID"
	}
	id := os.Getenv(key)
	if id == "" {
		return "", ErrGuest
	}
	return id, nil
}

// Static is a fixed identity, used in tests.
type Static struct {
	ID string
}

func (s Static) CurrentUser(ctx context.Context) (string, error) {
	if s.ID == "" {
		return "", ErrGuest
	}
	return s.ID, nil
}
