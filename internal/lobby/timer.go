package lobby

import (
	"sync"
	"time"
)

// IdleTimer is a restartable single-shot timer. Start re-arms the timer,
// disarming any pending shot first, so a timer never fires twice for one
// arming. Stop disarms a pending shot and is a no-op otherwise.
type IdleTimer struct {
	mu       sync.Mutex
	duration time.Duration
	fn       func()
	pending  *time.Timer
}

// NewIdleTimer creates a disarmed timer that invokes fn after duration.
func NewIdleTimer(duration time.Duration, fn func()) *IdleTimer {
	return &IdleTimer{duration: duration, fn: fn}
}

// Start arms the timer, replacing any pending shot.
func (t *IdleTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
	}
	t.pending = time.AfterFunc(t.duration, t.fn)
}

// Stop disarms the timer if it is armed.
func (t *IdleTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}
