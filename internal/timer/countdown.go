// Package timer provides the per-phase countdown clock. It emits discrete
// tick and expire events and holds no game state, so the same instance can
// back the tutorial and every main-game round.
package timer

import (
	"sync"
	"time"
)

// Countdown decrements once per second from a starting duration. OnTick is
// called with the new remaining value after each decrement; OnExpire is
// called exactly once when the value reaches zero, after which the countdown
// stops itself. Stop cancels future callbacks and is safe to call more than
// once, including after expiry.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	running   bool
	expired   bool
	onTick    func(secondsRemaining int)
	onExpire  func()
	stop      chan struct{}
}

func NewCountdown() *Countdown {
	return &Countdown{}
}

func (c *Countdown) Start(durationSeconds int, onTick func(int), onExpire func()) {
	c.mu.Lock()
	if c.running {
		c.stopLocked()
	}
	c.remaining = durationSeconds
	c.onTick = onTick
	c.onExpire = onExpire
	c.expired = false
	if durationSeconds <= 0 {
		c.mu.Unlock()
		c.fireExpire()
		return
	}
	c.running = true
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go c.loop(stop)
}

func (c *Countdown) loop(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if done := c.tick(); done {
				return
			}
		}
	}
}

// tick performs one decrement and reports whether the countdown finished.
// Callbacks run outside the lock so a consumer may call Stop from within
// them without deadlocking.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return true
	}
	c.remaining--
	remaining := c.remaining
	onTick := c.onTick
	done := remaining <= 0
	if done {
		c.running = false
		c.stop = nil
	}
	c.mu.Unlock()

	if onTick != nil {
		onTick(remaining)
	}
	if done {
		c.fireExpire()
	}
	return done
}

func (c *Countdown) fireExpire() {
	c.mu.Lock()
	if c.expired {
		c.mu.Unlock()
		return
	}
	c.expired = true
	onExpire := c.onExpire
	c.mu.Unlock()
	if onExpire != nil {
		onExpire()
	}
}

func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Countdown) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.running = false
}

// Remaining reports the seconds left; zero once expired or never started.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining < 0 {
		return 0
	}
	return c.remaining
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
