package chat

import (
	"sync"
	"time"
)

// DefaultTypingIdle is how long after the last keystroke the stopTyping
// emission fires.
const DefaultTypingIdle = time.Second

// typingDebouncer collapses a burst of keystrokes into a single typing
// emission, followed by one stopTyping once the burst has quieted for the
// idle interval. The timer is rescheduled on every keystroke.
type typingDebouncer struct {
	idle  time.Duration
	start func() error
	stop  func() error

	mu     sync.Mutex
	active bool
	timer  *time.Timer
	gen    uint64
}

func newTypingDebouncer(idle time.Duration, start, stop func() error) *typingDebouncer {
	if idle <= 0 {
		idle = DefaultTypingIdle
	}
	return &typingDebouncer{idle: idle, start: start, stop: stop}
}

// Keystroke notes local input activity. The first keystroke of a burst
// emits typing; every keystroke pushes the stopTyping timer out.
//
// The generation counter guards against an expired timer whose callback
// lost the race to Stop: such a callback wakes up holding a stale
// generation and must not end the burst the keystroke just refreshed.
func (d *typingDebouncer) Keystroke() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		if err := d.start(); err != nil {
			return err
		}
		d.active = true
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.idle, func() { d.fire(gen) })
	return nil
}

func (d *typingDebouncer) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || !d.active {
		return
	}
	d.active = false
	d.timer = nil
	_ = d.stop()
}

// Quiet emits stopTyping immediately if a burst is in progress.
func (d *typingDebouncer) Quiet() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if !d.active {
		return nil
	}
	d.active = false
	return d.stop()
}

// Cancel drops the pending timer without emitting anything. Used when the
// chat screen goes away.
func (d *typingDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.active = false
}
