package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"chat-client/internal/models"
	"chat-client/internal/observability"
	"chat-client/internal/registry"
)

const (
	// DefaultHandshakeTimeout bounds a single connect attempt.
	DefaultHandshakeTimeout = 20 * time.Second
	// DefaultMaxAttempts caps reconnection attempts before giving up.
	DefaultMaxAttempts = 10
	// chatPath is the persistent-transport endpoint on the chat server.
	chatPath = "/ws/chat"
)

// Options tunes a Conn. Zero values fall back to defaults.
type Options struct {
	HandshakeTimeout time.Duration
	MaxAttempts      uint64
	Registry         *registry.Registry
	Logger           zerolog.Logger
}

// Conn owns exactly one websocket connection to the chat server and fans
// decoded events out to subscribers. All network failures surface as
// events; no call panics or blocks on the network.
type Conn struct {
	url    string
	userID string
	connID string
	dialer websocket.Dialer
	opts   Options
	logger zerolog.Logger

	mu          sync.Mutex
	state       State
	attempts    int
	ws          *websocket.Conn
	closed      bool
	running     bool
	connectedAt time.Time
	handlers    []Handler

	writeMu sync.Mutex
}

// Dial prepares a connection to serverURL for the given user. The
// transport is not opened until Connect is called.
func Dial(serverURL, userID string, opts Options) (*Conn, error) {
	if userID == "" {
		return nil, fmt.Errorf("dial chat: user id is empty")
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("dial chat: parse server url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("dial chat: unsupported scheme %q", u.Scheme)
	}
	u.Path = chatPath
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()

	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	connID := uuid.NewString()
	return &Conn{
		url:    u.String(),
		userID: userID,
		connID: connID,
		dialer: websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout},
		opts:   opts,
		logger: opts.Logger.With().Str("conn_id", connID).Logger(),
		state:  Disconnected,
	}, nil
}

// ID returns the client-generated connection id used in telemetry.
func (c *Conn) ID() string { return c.connID }

// UserID returns the identity the connection was dialed with.
func (c *Conn) UserID() string { return c.userID }

// State reports the current connection state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempts reports how many connect attempts the current cycle has made,
// so the UI can distinguish "reconnecting" from "gave up".
func (c *Conn) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Subscribe registers a handler for every event the connection publishes.
// Handlers run on the connection goroutine in delivery order.
func (c *Conn) Subscribe(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// Connect opens the transport asynchronously. Progress and failures are
// reported through subscribed handlers, never returned here.
//
// The handle is registered before the first dial attempt, so a logout
// Clear racing a connect-in-flight still finds it and tears it down; the
// closed flag then aborts the dial.
func (c *Conn) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.state = Connecting
	c.attempts = 0
	reg := c.opts.Registry
	c.mu.Unlock()

	if reg != nil {
		reg.Set(c)
	}
	go c.run(ctx)
}

func (c *Conn) run(ctx context.Context) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	for {
		if err := c.connectWithRetry(ctx); err != nil {
			if c.isClosed() || ctx.Err() != nil {
				return
			}
			c.setState(Failed)
			c.logger.Error().Err(err).Msg("chat connection failed, giving up")
			c.publishLifecycle(ctx, "ws_error", err.Error())
			c.dispatch(Event{Kind: EventConnectionFailed, Reason: err.Error()})
			return
		}

		c.publishLifecycle(ctx, "ws_connect", "")
		c.dispatch(Event{Kind: EventConnected})

		reason := c.readLoop()
		observability.SetWSActive(false)
		if c.isClosed() || ctx.Err() != nil {
			return
		}

		c.setState(Disconnected)
		c.logger.Warn().Str("reason", reason).Msg("chat connection lost")
		c.publishLifecycle(ctx, "ws_disconnect", reason)
		c.dispatch(Event{Kind: EventDisconnected, Reason: reason})

		c.setState(Reconnecting)
		observability.IncWSReconnect()
	}
}

// connectWithRetry dials until success or the attempt cap is exhausted.
// The first failure already counts toward the cap.
func (c *Conn) connectWithRetry(ctx context.Context) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.opts.MaxAttempts-1), ctx)

	return backoff.Retry(func() error {
		if c.isClosed() {
			return backoff.Permanent(ErrConnectionClosed)
		}
		if err := c.dialOnce(ctx); err != nil {
			c.setState(Reconnecting)
			return err
		}
		return nil
	}, policy)
}

func (c *Conn) dialOnce(ctx context.Context) error {
	ctx, span := otel.Tracer("chat-client/ws").Start(ctx, "ws.dial")
	span.SetAttributes(attribute.String("chat.user_id", c.userID))
	defer span.End()

	c.mu.Lock()
	c.attempts++
	attempt := c.attempts
	c.mu.Unlock()
	observability.IncWSConnectAttempt()

	ws, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Warn().Err(err).Int("attempt", attempt).Msg("chat dial failed")
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		ws.Close()
		return backoff.Permanent(ErrConnectionClosed)
	}
	c.ws = ws
	c.state = Connected
	c.attempts = 0
	c.connectedAt = time.Now()
	c.mu.Unlock()

	observability.SetWSActive(true)
	c.logger.Info().Msg("chat connected")
	return nil
}

// readLoop decodes frames until the transport errors out. Malformed
// frames are dropped; only transport errors end the loop.
func (c *Conn) readLoop() (reason string) {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return ReasonTransportError
	}

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return closeReason(err)
		}

		var frame models.ChatEvent
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.protocolError("undecodable frame", err)
			continue
		}
		ev, ok := decodeFrame(frame)
		if !ok {
			c.protocolError("unexpected frame "+frame.Type, nil)
			continue
		}
		observability.IncWSEvent("in", frame.Type)
		c.dispatch(ev)
	}
}

// Emit sends one event frame to the server. It fails fast with
// ErrNotConnected instead of queueing while the transport is down.
func (c *Conn) Emit(ev models.ChatEvent) error {
	c.mu.Lock()
	if c.state != Connected || c.ws == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	ws := c.ws
	c.mu.Unlock()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("emit %s: %w", ev.Type, err)
	}
	observability.IncWSEvent("out", ev.Type)
	return nil
}

// Disconnect tears the connection down. Safe to call repeatedly and from
// any goroutine; the registry entry for this handle is cleared.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.state = Disconnected
	ws := c.ws
	c.ws = nil
	reg := c.opts.Registry
	c.mu.Unlock()

	if ws != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		ws.Close()
		observability.SetWSActive(false)
	}
	if reg != nil {
		reg.Drop(c)
	}
	c.logger.Info().Msg("chat disconnected by caller")
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Conn) dispatch(ev Event) {
	c.mu.Lock()
	handlers := make([]Handler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error().Interface("panic", r).Str("event", ev.Kind.String()).
						Msg("subscriber panicked")
				}
			}()
			h(ev)
		}()
	}
}

func (c *Conn) protocolError(detail string, err error) {
	observability.IncWSProtocolError()
	c.logger.Warn().Err(err).Str("detail", detail).Msg("protocol error, frame dropped")
}

func (c *Conn) publishLifecycle(ctx context.Context, name, reason string) {
	c.mu.Lock()
	connectedAt := c.connectedAt
	c.mu.Unlock()

	var durationMS int64
	if !connectedAt.IsZero() {
		durationMS = time.Since(connectedAt).Milliseconds()
	}
	_ = observability.PublishEvent(ctx, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"event":       name,
				"conn_id":     c.connID,
				"duration_ms": durationMS,
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id": c.userID,
			},
		},
	}, observability.BuildHeaders(c.connID, ""))
}

// decodeFrame maps a wire envelope to a typed event.
func decodeFrame(frame models.ChatEvent) (Event, bool) {
	switch frame.Type {
	case models.EventPreviousMessages:
		return Event{Kind: EventHistory, History: frame.Messages}, true
	case models.EventNewMessage:
		if frame.Message == nil {
			return Event{}, false
		}
		return Event{Kind: EventMessage, Message: frame.Message}, true
	case models.EventTyping:
		if frame.Typing == nil {
			return Event{}, false
		}
		return Event{Kind: EventTyping, UserID: frame.Typing.UserID}, true
	case models.EventStopTyping:
		if frame.Typing == nil {
			return Event{}, false
		}
		return Event{Kind: EventStopTyping, UserID: frame.Typing.UserID}, true
	case models.EventUserStatus:
		if frame.Status == nil {
			return Event{}, false
		}
		return Event{Kind: EventUserStatus, Status: frame.Status}, true
	}
	return Event{}, false
}

// closeReason maps a read error to a wire-level reason code.
func closeReason(err error) string {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return ReasonServerDisconnect
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransportError
}
