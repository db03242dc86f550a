package chat

import "errors"

var (
	// ErrNotConnected is returned when a send or typing emission is
	// attempted while the connection is not in the Connected state.
	// There is no offline queue; callers get immediate feedback.
	ErrNotConnected = errors.New("not connected to chat server")

	// ErrEmptyMessage rejects blank or whitespace-only message text.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrMessageTooLong rejects text over the input-layer limit.
	ErrMessageTooLong = errors.New("message text exceeds limit")

	// ErrConnectionClosed is returned when the caller already tore the
	// connection down.
	ErrConnectionClosed = errors.New("connection closed by caller")
)

// Close reason codes reported on disconnected events.
const (
	ReasonServerDisconnect = "io-server-disconnect"
	ReasonTransportError   = "transport-error"
	ReasonTimeout          = "timeout"
)
