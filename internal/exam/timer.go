package exam

import (
	"sync"
	"time"
)

// Timer is a monotonic countdown driving one attempt. It decrements once
// per interval while running and fires the expiry callback exactly once
// when the count reaches zero. Stop and expiry may race with a manual
// finalization; both paths settle on the internal flags under the mutex,
// so only one of them observes the transition.
type Timer struct {
	mu        sync.Mutex
	remaining int
	interval  time.Duration
	onTick    func(remaining int)
	onExpire  func()
	stopCh    chan struct{}
	running   bool
	expired   bool
}

// NewTimer creates a stopped timer with the given remaining seconds.
// interval is the wall-clock length of one tick (one second in
// production; tests shrink it). Callbacks may be nil.
func NewTimer(remaining int, interval time.Duration, onTick func(int), onExpire func()) *Timer {
	return &Timer{
		remaining: remaining,
		interval:  interval,
		onTick:    onTick,
		onExpire:  onExpire,
	}
}

// Start launches the countdown goroutine. Restarting a running or expired
// timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.running || t.expired || t.remaining <= 0 {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	stopCh := t.stopCh
	t.mu.Unlock()

	go t.loop(stopCh)
}

func (t *Timer) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			remaining, expired, active := t.tick()
			if !active {
				return
			}
			// Callbacks run outside the timer lock so they may take
			// the attempt lock without ordering hazards.
			if t.onTick != nil {
				t.onTick(remaining)
			}
			if expired {
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		}
	}
}

// tick decrements the countdown and reports the new value, whether it
// just expired, and whether the timer was still live for this tick.
func (t *Timer) tick() (remaining int, expired, active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.expired {
		return t.remaining, false, false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.expired = true
		t.running = false
		return t.remaining, true, true
	}
	return t.remaining, false, true
}

// Stop cancels the countdown. Safe to call repeatedly and after expiry.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.running = false
		close(t.stopCh)
	}
}

// Remaining returns the current countdown value.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}
