package timer

import "testing"

func TestCountdownTicksDownAndExpiresOnce(t *testing.T) {
	c := NewCountdown()
	var ticks []int
	expired := 0
	c.Start(3, func(remaining int) { ticks = append(ticks, remaining) }, func() { expired++ })
	defer c.Stop()
	// Drive the transitions directly instead of waiting on the wall clock.
	c.mu.Lock()
	c.stopLocked()
	c.running = true
	c.mu.Unlock()

	for !c.tick() {
	}
	if len(ticks) != 3 || ticks[0] != 2 || ticks[1] != 1 || ticks[2] != 0 {
		t.Fatalf("ticks = %v, want [2 1 0]", ticks)
	}
	if expired != 1 {
		t.Fatalf("expired %d times, want 1", expired)
	}
	if c.Running() {
		t.Fatalf("countdown still running after expiry")
	}
	// Further ticks after expiry must not re-fire.
	c.tick()
	c.fireExpire()
	if expired != 1 {
		t.Fatalf("expire fired again after completion: %d", expired)
	}
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	c := NewCountdown()
	c.Start(10, nil, func() { t.Fatalf("expire fired after Stop") })
	c.Stop()
	c.Stop()
	if c.Running() {
		t.Fatalf("running after Stop")
	}
	if done := c.tick(); !done {
		t.Fatalf("tick after Stop should report done")
	}
}

func TestCountdownZeroDurationExpiresImmediately(t *testing.T) {
	c := NewCountdown()
	expired := 0
	c.Start(0, nil, func() { expired++ })
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}
	if c.Running() {
		t.Fatalf("zero-duration countdown reported running")
	}
}

func TestCountdownRestartReplacesPreviousRun(t *testing.T) {
	c := NewCountdown()
	c.Start(5, nil, nil)
	c.Start(2, nil, nil)
	defer c.Stop()
	if got := c.Remaining(); got != 2 {
		t.Fatalf("Remaining = %d after restart, want 2", got)
	}
}
