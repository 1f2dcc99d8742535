package exam

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerCountsDownAndExpires(t *testing.T) {
	var ticks, expiries atomic.Int32

	tm := NewTimer(3, 5*time.Millisecond,
		func(remaining int) { ticks.Add(1) },
		func() { expiries.Add(1) },
	)
	tm.Start()

	deadline := time.After(time.Second)
	for expiries.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timer never expired")
		case <-time.After(time.Millisecond):
		}
	}

	if got := ticks.Load(); got != 3 {
		t.Errorf("onTick fired %d times, want 3", got)
	}
	if got := expiries.Load(); got != 1 {
		t.Errorf("onExpire fired %d times, want 1", got)
	}
	if got := tm.Remaining(); got != 0 {
		t.Errorf("Remaining = %d after expiry, want 0", got)
	}
}

func TestTimerStopHaltsCountdown(t *testing.T) {
	var expiries atomic.Int32

	tm := NewTimer(1000, 5*time.Millisecond, nil, func() { expiries.Add(1) })
	tm.Start()

	time.Sleep(30 * time.Millisecond)
	tm.Stop()
	frozen := tm.Remaining()

	time.Sleep(30 * time.Millisecond)
	if got := tm.Remaining(); got != frozen {
		t.Errorf("Remaining moved after Stop: %d → %d", frozen, got)
	}
	if expiries.Load() != 0 {
		t.Error("onExpire fired on a stopped timer")
	}
}

func TestTimerStopIdempotent(t *testing.T) {
	tm := NewTimer(100, 5*time.Millisecond, nil, nil)
	tm.Start()

	tm.Stop()
	tm.Stop() // second call must not panic or double-close
}

func TestTimerRestartAfterExpiryIsNoop(t *testing.T) {
	var expiries atomic.Int32

	tm := NewTimer(1, 5*time.Millisecond, nil, func() { expiries.Add(1) })
	tm.Start()

	deadline := time.After(time.Second)
	for expiries.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("timer never expired")
		case <-time.After(time.Millisecond):
		}
	}

	tm.Start()
	time.Sleep(30 * time.Millisecond)
	if got := expiries.Load(); got != 1 {
		t.Errorf("onExpire fired %d times after restart, want 1", got)
	}
}

func TestTimerZeroRemainingNeverStarts(t *testing.T) {
	var fired atomic.Int32
	tm := NewTimer(0, time.Millisecond, func(int) { fired.Add(1) }, func() { fired.Add(1) })
	tm.Start()

	time.Sleep(20 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("callbacks fired for a zero-length countdown")
	}
}
