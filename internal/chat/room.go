package chat

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"chat-client/internal/models"
	"chat-client/internal/presence"
	"chat-client/internal/store"
)

// MaxMessageLength is the input-layer bound on message text, in runes.
const MaxMessageLength = 500

// Transport is the connection surface a Session depends on.
type Transport interface {
	Subscribe(Handler)
	Emit(models.ChatEvent) error
	State() State
	Disconnect()
}

// SessionOptions tunes a Session.
type SessionOptions struct {
	TypingIdle time.Duration
	Presence   presence.Options
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Session is one active (buyer, seller, product) conversation. It owns
// the message log and presence tracker for that room and mediates all
// message and typing traffic through the underlying connection.
type Session struct {
	conn     Transport
	identity models.RoomIdentity
	log      *store.MessageLog
	tracker  *presence.Tracker
	typing   *typingDebouncer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSession builds a session for the given room and subscribes it to the
// connection's event stream. The room identity is fixed; a different
// seller or product needs a new session.
func NewSession(conn Transport, identity models.RoomIdentity, opts SessionOptions) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		conn:     conn,
		identity: identity,
		log:      store.NewMessageLog(),
		tracker:  presence.NewTracker(opts.Presence),
		logger: opts.Logger.With().
			Str("seller_id", identity.SellerID).
			Str("product_id", identity.ProductID).Logger(),
		now: opts.Now,
	}
	s.typing = newTypingDebouncer(opts.TypingIdle, s.emitTyping, s.emitStopTyping)
	conn.Subscribe(s.handleEvent)
	return s
}

// Identity returns the room triple the session joined with.
func (s *Session) Identity() models.RoomIdentity { return s.identity }

// Log exposes the session's message log for rendering.
func (s *Session) Log() *store.MessageLog { return s.log }

// Presence exposes the counterpart's presence tracker.
func (s *Session) Presence() *presence.Tracker { return s.tracker }

// Send validates text, appends it to the log optimistically and emits it
// to the server. The append happens before the network write, so the
// sender always sees their own message immediately. A send while the
// connection is down is rejected and the log is left untouched.
func (s *Session) Send(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if s.conn.State() != Connected {
		return ErrNotConnected
	}

	msg := models.ChatMessage{
		SenderID:   s.identity.UserID,
		ReceiverID: s.identity.SellerID,
		Message:    trimmed,
		ProductID:  s.identity.ProductID,
		Timestamp:  s.now(),
	}
	s.log.Append(msg, store.SourceLocal)
	return s.conn.Emit(models.ChatEvent{Type: models.EventSendMessage, Message: &msg})
}

// SetTyping reports local input activity. true marks a keystroke and is
// debounced into at most one typing emission per burst; false ends the
// burst immediately with a stopTyping emission.
func (s *Session) SetTyping(typing bool) error {
	if s.conn.State() != Connected {
		return ErrNotConnected
	}
	if typing {
		return s.typing.Keystroke()
	}
	return s.typing.Quiet()
}

// Close cancels the pending typing timer and tears the connection down.
// Called when the chat screen goes away.
func (s *Session) Close() {
	s.typing.Cancel()
	s.tracker.Stop()
	s.conn.Disconnect()
}

func (s *Session) emitTyping() error {
	return s.conn.Emit(models.ChatEvent{
		Type:   models.EventTyping,
		Typing: &models.TypingInfo{UserID: s.identity.UserID, ReceiverID: s.identity.SellerID},
	})
}

func (s *Session) emitStopTyping() error {
	return s.conn.Emit(models.ChatEvent{
		Type:   models.EventStopTyping,
		Typing: &models.TypingInfo{UserID: s.identity.UserID, ReceiverID: s.identity.SellerID},
	})
}

// join announces the room triple. Fire and forget; the server answers
// asynchronously with a previousMessages frame. Re-issued on every
// Connected transition so a reconnect never leaves the room unjoined.
func (s *Session) join() {
	err := s.conn.Emit(models.ChatEvent{Type: models.EventJoinRoom, Room: &s.identity})
	if err != nil {
		s.logger.Warn().Err(err).Msg("joinRoom emission failed")
		return
	}
	s.logger.Info().Msg("joined room")
}

// handleEvent routes connection events to the log and presence tracker.
// Presence and typing frames about users other than the room's
// counterpart are discarded.
func (s *Session) handleEvent(ev Event) {
	switch ev.Kind {
	case EventConnected:
		s.join()
	case EventDisconnected, EventConnectionFailed:
		s.typing.Cancel()
	case EventHistory:
		s.log.Hydrate(ev.History)
		s.logger.Debug().Int("count", len(ev.History)).Msg("history hydrated")
	case EventMessage:
		if ev.Message != nil {
			s.log.Append(*ev.Message, store.SourceRemote)
		}
	case EventTyping:
		if ev.UserID == s.identity.SellerID {
			s.tracker.SetTyping(true)
		}
	case EventStopTyping:
		if ev.UserID == s.identity.SellerID {
			s.tracker.SetTyping(false)
		}
	case EventUserStatus:
		if ev.Status != nil && ev.Status.UserID == s.identity.SellerID {
			s.tracker.SetStatus(*ev.Status)
		}
	}
}
