package track

import (
	"testing"
	"time"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestMonitor(cb Callbacks, threshold time.Duration) (*Monitor, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	m := NewMonitor()
	m.now = clock.now
	m.Enable(cb, threshold)
	// The poll goroutine races the fake clock; the tests drive poll directly.
	m.mu.Lock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.mu.Unlock()
	return m, clock
}

func TestInactivityEdgeTriggered(t *testing.T) {
	var starts, actives int
	m, clock := newTestMonitor(Callbacks{
		OnInactiveStart: func(time.Time) { starts++ },
		OnActive:        func(time.Time) { actives++ },
	}, 5*time.Second)
	defer m.Disable()

	clock.advance(4 * time.Second)
	m.poll(clock.now())
	if starts != 0 {
		t.Fatalf("inactive fired before threshold")
	}
	clock.advance(2 * time.Second)
	m.poll(clock.now())
	m.poll(clock.now())
	m.poll(clock.now())
	if starts != 1 {
		t.Fatalf("inactive starts = %d, want exactly 1", starts)
	}
	m.Activity()
	m.Activity()
	if actives != 1 {
		t.Fatalf("active edges = %d, want exactly 1", actives)
	}
}

func TestActivityWhileActiveFiresNothing(t *testing.T) {
	var actives int
	m, clock := newTestMonitor(Callbacks{
		OnActive: func(time.Time) { actives++ },
	}, 5*time.Second)
	defer m.Disable()

	m.Activity()
	clock.advance(3 * time.Second)
	m.Activity()
	m.poll(clock.now())
	if actives != 0 {
		t.Fatalf("active fired without a preceding inactive edge")
	}
}

func TestPageLeaveReturnDebounced(t *testing.T) {
	var leaves, returns int
	m, clock := newTestMonitor(Callbacks{
		OnPageLeave:  func(time.Time, int) { leaves++ },
		OnPageReturn: func(time.Time) { returns++ },
	}, 5*time.Second)
	defer m.Disable()

	m.Blur()
	m.PageHidden() // same user action, inside the debounce window
	if leaves != 1 {
		t.Fatalf("leaves = %d, want 1", leaves)
	}
	clock.advance(500 * time.Millisecond)
	m.Focus()
	m.PageShown()
	if returns != 1 {
		t.Fatalf("returns = %d, want 1", returns)
	}
}

func TestTabChangeCountAccumulatesAndResets(t *testing.T) {
	var counts []int
	m, clock := newTestMonitor(Callbacks{
		OnPageLeave: func(_ time.Time, n int) { counts = append(counts, n) },
	}, 5*time.Second)
	defer m.Disable()

	for i := 0; i < 3; i++ {
		m.Blur()
		clock.advance(time.Second)
		m.Focus()
		clock.advance(time.Second)
	}
	if len(counts) != 3 || counts[2] != 3 {
		t.Fatalf("counts = %v, want third leave to report 3", counts)
	}

	clock.advance(tabChangeReset)
	m.poll(clock.now())
	if got := m.TabChangeCount(); got != 0 {
		t.Fatalf("count = %d after quiet window, want 0", got)
	}
	m.Blur()
	if counts[len(counts)-1] != 1 {
		t.Fatalf("leave after reset reported %d, want 1", counts[len(counts)-1])
	}
}

func TestSuppressNextBlurIsOneShot(t *testing.T) {
	var leaves int
	m, clock := newTestMonitor(Callbacks{
		OnPageLeave: func(time.Time, int) { leaves++ },
	}, 5*time.Second)
	defer m.Disable()

	m.SuppressNextBlur()
	m.Blur()
	if leaves != 0 {
		t.Fatalf("suppressed blur still reported")
	}
	clock.advance(time.Second)
	m.Blur()
	if leaves != 1 {
		t.Fatalf("second blur not reported, leaves = %d", leaves)
	}
}

func TestDisableStopsReporting(t *testing.T) {
	m, clock := newTestMonitor(Callbacks{
		OnPageLeave:     func(time.Time, int) { t.Fatalf("leave after Disable") },
		OnInactiveStart: func(time.Time) { t.Fatalf("inactive after Disable") },
	}, time.Second)
	m.Disable()
	m.Disable()

	m.Blur()
	m.Activity()
	clock.advance(time.Minute)
	m.poll(clock.now())
}

func TestCallbackPanicsAreSwallowed(t *testing.T) {
	m, clock := newTestMonitor(Callbacks{
		OnInactiveStart: func(time.Time) { panic("observer bug") },
	}, time.Second)
	defer m.Disable()

	clock.advance(2 * time.Second)
	m.poll(clock.now()) // must not propagate
	m.Activity()
}
