// Package track observes participant behavior during timed phases: input
// inactivity, terminal focus loss, and page-hide events. It reports state
// transitions through callbacks and keeps a tab-change counter so repeated
// focus loss within a short window is surfaced to the backend.
package track

import (
	"sync"
	"time"
)

const (
	// Minimum spacing between reported leave/return transitions. Terminals
	// can emit focus and visibility changes nearly simultaneously for a
	// single user action; anything inside this window is one event.
	eventDebounce = 300 * time.Millisecond

	// Quiet period after which the tab-change counter resets.
	tabChangeReset = 10 * time.Second

	pollInterval = time.Second
)

// Callbacks receive transition notifications. All callbacks are optional
// and best-effort: a panic inside one is swallowed so observation never
// stops mid-phase.
type Callbacks struct {
	OnInactiveStart func(at time.Time)
	OnActive        func(at time.Time)
	OnPageLeave     func(at time.Time, tabChangeCount int)
	OnPageReturn    func(at time.Time)
}

// Monitor tracks one phase at a time. Enable arms it with callbacks and an
// inactivity threshold; Disable tears everything down and is idempotent.
// Input is fed by the UI layer: Activity for any key or mouse message,
// Blur/Focus for terminal focus reporting, PageHidden/PageShown for
// suspend-style visibility changes.
type Monitor struct {
	mu sync.Mutex

	enabled   bool
	callbacks Callbacks
	threshold time.Duration

	lastActivity time.Time
	inactive     bool

	pageActive       bool
	lastPageEvent    time.Time
	tabChangeCount   int
	lastTabChange    time.Time
	suppressNextBlur bool

	stop chan struct{}
	now  func() time.Time
}

func NewMonitor() *Monitor {
	return &Monitor{now: time.Now}
}

func (m *Monitor) Enable(cb Callbacks, threshold time.Duration) {
	m.mu.Lock()
	if m.enabled {
		m.disableLocked()
	}
	if threshold <= 0 {
		threshold = 5 * time.Second
	}
	now := m.now()
	m.enabled = true
	m.callbacks = cb
	m.threshold = threshold
	m.lastActivity = now
	m.inactive = false
	m.pageActive = true
	m.lastPageEvent = time.Time{}
	m.tabChangeCount = 0
	m.lastTabChange = time.Time{}
	m.suppressNextBlur = false
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	go m.pollLoop(stop)
}

func (m *Monitor) Disable() {
	m.mu.Lock()
	m.disableLocked()
	m.mu.Unlock()
}

func (m *Monitor) disableLocked() {
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
	m.enabled = false
	m.callbacks = Callbacks{}
}

func (m *Monitor) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.poll(m.now())
		}
	}
}

// poll checks the inactivity edge and expires the tab-change window. It is
// the only place the idle state flips to inactive.
func (m *Monitor) poll(now time.Time) {
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	var fire func(time.Time)
	if !m.inactive && m.pageActive && now.Sub(m.lastActivity) >= m.threshold {
		m.inactive = true
		fire = m.callbacks.OnInactiveStart
	}
	if m.tabChangeCount > 0 && now.Sub(m.lastTabChange) >= tabChangeReset {
		m.tabChangeCount = 0
	}
	m.mu.Unlock()

	if fire != nil {
		safeCall(func() { fire(now) })
	}
}

// Activity records a participant input. If the monitor was in the inactive
// state this is the active edge and OnActive fires.
func (m *Monitor) Activity() {
	now := m.now()
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	m.lastActivity = now
	var fire func(time.Time)
	if m.inactive {
		m.inactive = false
		fire = m.callbacks.OnActive
	}
	m.mu.Unlock()

	if fire != nil {
		safeCall(func() { fire(now) })
	}
}

func (m *Monitor) Blur()       { m.pageLeave() }
func (m *Monitor) PageHidden() { m.pageLeave() }
func (m *Monitor) Focus()      { m.pageReturn() }
func (m *Monitor) PageShown()  { m.pageReturn() }

// SuppressNextBlur arms a one-shot guard so the next leave signal is
// ignored. The controller sets it just before opening a modal dialog,
// which steals focus without the participant going anywhere.
func (m *Monitor) SuppressNextBlur() {
	m.mu.Lock()
	if m.enabled {
		m.suppressNextBlur = true
	}
	m.mu.Unlock()
}

func (m *Monitor) pageLeave() {
	now := m.now()
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	if m.suppressNextBlur {
		m.suppressNextBlur = false
		m.mu.Unlock()
		return
	}
	if !m.pageActive || (!m.lastPageEvent.IsZero() && now.Sub(m.lastPageEvent) < eventDebounce) {
		m.mu.Unlock()
		return
	}
	m.pageActive = false
	m.lastPageEvent = now
	m.tabChangeCount++
	m.lastTabChange = now
	count := m.tabChangeCount
	fire := m.callbacks.OnPageLeave
	m.mu.Unlock()

	if fire != nil {
		safeCall(func() { fire(now, count) })
	}
}

func (m *Monitor) pageReturn() {
	now := m.now()
	m.mu.Lock()
	if !m.enabled {
		m.mu.Unlock()
		return
	}
	if m.pageActive || (!m.lastPageEvent.IsZero() && now.Sub(m.lastPageEvent) < eventDebounce) {
		m.mu.Unlock()
		return
	}
	m.pageActive = true
	m.lastPageEvent = now
	// Returning counts as activity; no idle edge right after coming back.
	m.lastActivity = now
	m.inactive = false
	fire := m.callbacks.OnPageReturn
	m.mu.Unlock()

	if fire != nil {
		safeCall(func() { fire(now) })
	}
}

// TabChangeCount reports leaves within the current reset window.
func (m *Monitor) TabChangeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tabChangeCount
}

func safeCall(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
