package clock

import (
	"sort"
	"sync"
	"time"
)

// Mock is a virtual clock. Time only moves when Add or Set is called, and
// due callbacks run synchronously on the caller's goroutine in deadline
// order.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*mockTimer
}

type mockTimer struct {
	mock *Mock
	when time.Time
	seq  uint64
	fn   func()
	done bool
}

// NewMock returns a Mock starting at start.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

// Now implements Clock.
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc implements Clock.
func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &mockTimer{mock: m, when: m.now.Add(d), seq: m.seq, fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Add advances the clock by d, firing every timer that becomes due.
func (m *Mock) Add(d time.Duration) {
	m.mu.Lock()
	end := m.now.Add(d)
	m.mu.Unlock()
	m.advanceTo(end)
}

// Set moves the clock to t. Moving backwards does not fire anything.
func (m *Mock) Set(t time.Time) {
	m.advanceTo(t)
}

// Pending returns how many timers are scheduled and not yet fired or stopped.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *Mock) advanceTo(end time.Time) {
	for {
		m.mu.Lock()
		next := m.nextDueLocked(end)
		if next == nil {
			m.now = end
			m.mu.Unlock()
			return
		}
		m.now = next.when
		next.done = true
		m.removeLocked(next)
		m.mu.Unlock()

		next.fn()
	}
}

func (m *Mock) nextDueLocked(end time.Time) *mockTimer {
	if len(m.timers) == 0 {
		return nil
	}
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].when.Equal(m.timers[j].when) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].when.Before(m.timers[j].when)
	})
	if m.timers[0].when.After(end) {
		return nil
	}
	return m.timers[0]
}

func (m *Mock) removeLocked(t *mockTimer) {
	for i, candidate := range m.timers {
		if candidate == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// Stop implements Timer.
func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.mock.removeLocked(t)
	return true
}
