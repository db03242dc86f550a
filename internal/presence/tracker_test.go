package presence

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chat-client/internal/models"
)

func TestFormatLastSeen(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	tenDaysAgo := now.Add(-10 * 24 * time.Hour)
	cases := []struct {
		name     string
		lastSeen time.Time
		want     string
	}{
		{"just disconnected", now.Add(-30 * time.Second), "Offline"},
		{"minutes", now.Add(-150 * time.Second), "Offline (2m ago)"},
		{"hours", now.Add(-2 * time.Hour), "Offline (2h ago)"},
		{"days", now.Add(-3 * 24 * time.Hour), "Offline (3d ago)"},
		{"date", tenDaysAgo, fmt.Sprintf("Offline (%s)", tenDaysAgo.Format("Jan 2"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatLastSeen(tc.lastSeen, now))
		})
	}
}

func TestTypingStateMachine(t *testing.T) {
	tr := NewTracker(Options{})
	defer tr.Stop()

	assert.False(t, tr.Snapshot().IsTyping)
	tr.SetTyping(true)
	assert.True(t, tr.Snapshot().IsTyping)
	tr.SetTyping(false)
	assert.False(t, tr.Snapshot().IsTyping)
}

func TestTypingWatchdogClearsWedgedIndicator(t *testing.T) {
	tr := NewTracker(Options{TypingTimeout: 30 * time.Millisecond})
	defer tr.Stop()

	tr.SetTyping(true)
	assert.True(t, tr.Snapshot().IsTyping)

	assert.Eventually(t, func() bool {
		return !tr.Snapshot().IsTyping
	}, time.Second, 5*time.Millisecond)
}

// A watchdog callback that expired just as a typing refresh re-armed it
// must not clear the refreshed indicator.
func TestStaleWatchdogKeepsRefreshedTyping(t *testing.T) {
	tr := NewTracker(Options{TypingTimeout: time.Hour})
	defer tr.Stop()

	tr.SetTyping(true)
	stale := tr.gen
	tr.SetTyping(true)

	tr.expireTyping(stale)
	assert.True(t, tr.Snapshot().IsTyping, "a superseded watchdog never clears typing")
}

func TestWatchdogDisabled(t *testing.T) {
	tr := NewTracker(Options{TypingTimeout: -1})
	defer tr.Stop()

	tr.SetTyping(true)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, tr.Snapshot().IsTyping)
}

func TestOfflineStatusClearsTyping(t *testing.T) {
	tr := NewTracker(Options{})
	defer tr.Stop()

	tr.SetTyping(true)
	seen := time.Now()
	tr.SetStatus(models.UserStatus{UserID: "seller-1", IsOnline: false, LastSeen: &seen})

	snap := tr.Snapshot()
	assert.False(t, snap.IsTyping)
	assert.False(t, snap.IsOnline)
	assert.NotNil(t, snap.LastSeen)
}

func TestStatusKeepsLastSeenWhenAbsent(t *testing.T) {
	tr := NewTracker(Options{})
	defer tr.Stop()

	seen := time.Now().Add(-time.Hour)
	tr.SetStatus(models.UserStatus{UserID: "seller-1", IsOnline: true, LastSeen: &seen})
	tr.SetStatus(models.UserStatus{UserID: "seller-1", IsOnline: false})

	snap := tr.Snapshot()
	assert.NotNil(t, snap.LastSeen)
	assert.True(t, snap.LastSeen.Equal(seen))
}

func TestDisplayPrecedence(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(Options{TypingTimeout: -1, Now: func() time.Time { return now }})

	assert.Equal(t, "Offline", tr.Display())

	seen := now.Add(-2 * time.Hour)
	tr.SetStatus(models.UserStatus{UserID: "seller-1", IsOnline: false, LastSeen: &seen})
	assert.Equal(t, "Offline (2h ago)", tr.Display())

	tr.SetStatus(models.UserStatus{UserID: "seller-1", IsOnline: true, LastSeen: &seen})
	assert.Equal(t, "Online", tr.Display())

	tr.SetTyping(true)
	assert.Equal(t, "Typing...", tr.Display())
}
