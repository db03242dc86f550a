package store

import (
	"sync"
	"time"

	"chat-client/internal/models"
	"chat-client/internal/observability"
)

// Source tells Append whether a message is the sender's own optimistic
// echo or arrived from the server.
type Source int

const (
	SourceLocal Source = iota
	SourceRemote
)

// DedupWindow is the time window inside which a remote message with the
// same sender and text as an existing entry is treated as a duplicate.
// It reconciles the server's broadcast of a message with the sender's
// optimistic local echo.
const DedupWindow = 2000 * time.Millisecond

// MessageLog is the append-only, deduplicated, time-ordered store of
// messages for one active room. It holds no state beyond the session's
// lifetime. Safe for concurrent use; the connection goroutine appends
// while the UI reads.
type MessageLog struct {
	mu       sync.RWMutex
	entries  []models.ChatMessage
	hydrated bool
}

// NewMessageLog creates an empty log.
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Hydrate installs the server's history reply. Called once per session.
// If live messages raced ahead of the history frame they are preserved:
// history goes first and previously appended entries are re-appended
// behind it, minus any that duplicate a history entry.
func (l *MessageLog) Hydrate(history []models.ChatMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.entries
	l.entries = make([]models.ChatMessage, len(history), len(history)+len(live))
	copy(l.entries, history)
	for _, m := range live {
		if !l.duplicateLocked(m) {
			l.entries = append(l.entries, m)
		}
	}
	l.hydrated = true
}

// Hydrated reports whether the history reply has arrived.
func (l *MessageLog) Hydrated() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hydrated
}

// Append inserts a message at the end of the log. Local messages are
// inserted unconditionally; remote ones are dropped when they duplicate
// an existing entry. Reports whether the message was inserted.
func (l *MessageLog) Append(m models.ChatMessage, src Source) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if src == SourceRemote && l.duplicateLocked(m) {
		observability.IncDuplicateDropped()
		return false
	}
	l.entries = append(l.entries, m)
	return true
}

// Messages returns the ordered sequence for rendering. Insertion order,
// never re-sorted.
func (l *MessageLog) Messages() []models.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.ChatMessage, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of stored messages.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// duplicateLocked applies the dedup heuristic: same sender, same text,
// timestamps within DedupWindow of each other.
func (l *MessageLog) duplicateLocked(m models.ChatMessage) bool {
	for i := range l.entries {
		e := &l.entries[i]
		if e.SenderID != m.SenderID || e.Message != m.Message {
			continue
		}
		delta := m.Timestamp.Sub(e.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta < DedupWindow {
			return true
		}
	}
	return false
}
