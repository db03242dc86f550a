package presence

import (
	"fmt"
	"sync"
	"time"

	"chat-client/internal/models"
)

// DefaultTypingTimeout clears a wedged typing indicator when the server
// never delivers stopTyping (counterpart crash, dropped frame).
const DefaultTypingTimeout = 10 * time.Second

// State is the last-known presence of the room's counterpart. IsTyping is
// transient UI state; IsOnline and LastSeen are server-pushed values held
// until superseded.
type State struct {
	IsOnline bool
	LastSeen *time.Time
	IsTyping bool
}

// Options tunes a Tracker.
type Options struct {
	// TypingTimeout is the watchdog interval after which a typing state
	// with no refresh is cleared. Zero means the default; negative
	// disables the watchdog entirely.
	TypingTimeout time.Duration
	Now           func() time.Time
}

// Tracker derives a single display state for what the counterpart is
// doing right now, from typing and userStatus events already filtered to
// the counterpart by the session.
type Tracker struct {
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	state    State
	watchdog *time.Timer
	gen      uint64
}

// NewTracker creates a tracker with everything unknown: offline, no
// last-seen, not typing.
func NewTracker(opts Options) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	timeout := opts.TypingTimeout
	if timeout == 0 {
		timeout = DefaultTypingTimeout
	}
	return &Tracker{timeout: timeout, now: opts.Now}
}

// SetTyping moves the typing state machine. true starts (or refreshes)
// the typing indicator and arms the watchdog; false clears it. The
// generation counter keeps a watchdog callback that already expired, but
// lost the race to Stop, from clearing a freshly refreshed indicator.
func (t *Tracker) SetTyping(typing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.IsTyping = typing
	t.gen++
	if t.watchdog != nil {
		t.watchdog.Stop()
		t.watchdog = nil
	}
	if typing && t.timeout > 0 {
		gen := t.gen
		t.watchdog = time.AfterFunc(t.timeout, func() { t.expireTyping(gen) })
	}
}

func (t *Tracker) expireTyping(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen {
		return
	}
	t.state.IsTyping = false
	t.watchdog = nil
}

// SetStatus records a server-pushed online/last-seen snapshot. A user who
// went offline is also no longer typing.
func (t *Tracker) SetStatus(status models.UserStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.IsOnline = status.IsOnline
	if status.LastSeen != nil {
		seen := *status.LastSeen
		t.state.LastSeen = &seen
	}
	if !status.IsOnline {
		t.state.IsTyping = false
		if t.watchdog != nil {
			t.watchdog.Stop()
			t.watchdog = nil
		}
	}
}

// Snapshot returns the current presence state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Display renders the presence for the UI: typing wins over online, which
// wins over the last-seen text.
func (t *Tracker) Display() string {
	s := t.Snapshot()
	switch {
	case s.IsTyping:
		return "Typing..."
	case s.IsOnline:
		return "Online"
	case s.LastSeen == nil:
		return "Offline"
	default:
		return FormatLastSeen(*s.LastSeen, t.now())
	}
}

// Stop cancels the watchdog timer. Called when the session goes away.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.watchdog != nil {
		t.watchdog.Stop()
		t.watchdog = nil
	}
}

// FormatLastSeen renders an offline label for a last-seen instant. Pure
// function of its inputs.
func FormatLastSeen(lastSeen, now time.Time) string {
	d := now.Sub(lastSeen)
	switch {
	case d < time.Minute:
		return "Offline"
	case d < time.Hour:
		return fmt.Sprintf("Offline (%dm ago)", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("Offline (%dh ago)", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("Offline (%dd ago)", int(d.Hours()/24))
	default:
		return fmt.Sprintf("Offline (%s)", lastSeen.Format("Jan 2"))
	}
}
