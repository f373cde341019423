// Package idle detects user inactivity. After a period without activity it
// warns with a one-second countdown, then forces a logout.
package idle

import (
	"math"
	"sync"
	"time"

	"github.com/jzahidzamacona/Fronty-sub001/internal/clock"
	"github.com/rs/zerolog/log"
)

const tickInterval = time.Second

// LogoutFunc ends the session. The monitor calls it once per idle cycle.
type LogoutFunc func()

type Option func(*Monitor)

// WithOnPhase registers a callback for phase transitions.
func WithOnPhase(fn func(Phase)) Option {
	return func(m *Monitor) { m.onPhase = fn }
}

// WithOnTick registers the countdown callback. It receives the whole seconds
// left before the logout deadline, rounded up.
func WithOnTick(fn func(remaining int)) Option {
	return func(m *Monitor) { m.onTick = fn }
}

// Monitor is the idle state machine for one context. Callbacks run on the
// clock's timer goroutine, or on the caller's goroutine for Touch, and never
// while the monitor's lock is held.
type Monitor struct {
	cfg     Config
	logout  LogoutFunc
	onPhase func(Phase)
	onTick  func(int)

	mu           sync.Mutex
	timers       timerSet
	active       bool
	phase        Phase
	lastActivity time.Time
	deadline     time.Time
}

// NewMonitor validates cfg and returns an inactive monitor.
func NewMonitor(cfg Config, logout LogoutFunc, opts ...Option) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	m := &Monitor{
		cfg:    cfg,
		logout: logout,
		timers: timerSet{clock: cfg.Clock},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Activate starts the first idle cycle. Activating twice does nothing.
func (m *Monitor) Activate() {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return
	}
	m.active = true
	notify := m.resetLocked()
	m.mu.Unlock()

	log.Debug().Dur("idleLimit", m.cfg.IdleLimit).Dur("warnLead", m.cfg.WarnLead).Msg("Idle monitor active")
	notify()
}

// Deactivate cancels every timer. No callback runs afterwards.
func (m *Monitor) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}
	m.active = false
	m.timers.cancelAll()
}

// Touch records activity: the phase returns to ACTIVE and all timers are
// re-armed from now.
func (m *Monitor) Touch(a Activity) {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	notify := m.resetLocked()
	m.mu.Unlock()

	log.Trace().Str("activity", a.String()).Msg("Idle cycle reset")
	notify()
}

// Acknowledge is the warning's "keep me signed in" action.
func (m *Monitor) Acknowledge() {
	m.Touch(ActivityPointerDown)
}

// Phase returns the current phase.
func (m *Monitor) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Remaining returns the whole seconds left before the logout deadline.
func (m *Monitor) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remainingLocked()
}

// LastActivity returns the time of the last recorded activity.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

func (m *Monitor) resetLocked() func() {
	m.timers.cancelAll()

	now := m.cfg.Clock.Now()
	m.lastActivity = now
	m.deadline = now.Add(m.cfg.IdleLimit)
	changed := m.phase != PhaseActive
	m.phase = PhaseActive

	m.timers.arm(m.cfg.WarnAfter(), m.enterWarning)
	m.timers.arm(m.cfg.IdleLimit, m.enterLoggingOut)

	if !changed {
		return func() {}
	}
	return func() { m.emitPhase(PhaseActive) }
}

func (m *Monitor) enterWarning(gen uint64) {
	m.mu.Lock()
	if !m.active || !m.timers.current(gen) {
		m.mu.Unlock()
		return
	}
	m.phase = PhaseWarning
	remaining := m.remainingLocked()
	m.timers.arm(tickInterval, m.tick)
	m.mu.Unlock()

	log.Debug().Int("remaining", remaining).Msg("Idle warning")
	m.emitPhase(PhaseWarning)
	m.emitTick(remaining)
}

func (m *Monitor) tick(gen uint64) {
	m.mu.Lock()
	if !m.active || !m.timers.current(gen) || m.phase != PhaseWarning {
		m.mu.Unlock()
		return
	}
	remaining := m.remainingLocked()
	m.timers.arm(tickInterval, m.tick)
	m.mu.Unlock()

	m.emitTick(remaining)
}

func (m *Monitor) enterLoggingOut(gen uint64) {
	m.mu.Lock()
	if !m.active || !m.timers.current(gen) {
		m.mu.Unlock()
		return
	}
	m.phase = PhaseLoggingOut
	m.timers.cancelAll()
	m.mu.Unlock()

	log.Info().Dur("idleLimit", m.cfg.IdleLimit).Msg("Idle limit reached, logging out")
	m.emitPhase(PhaseLoggingOut)
	if m.logout != nil {
		m.logout()
	}
}

func (m *Monitor) remainingLocked() int {
	left := m.deadline.Sub(m.cfg.Clock.Now())
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func (m *Monitor) emitPhase(p Phase) {
	if m.onPhase != nil {
		m.onPhase(p)
	}
}

func (m *Monitor) emitTick(remaining int) {
	if m.onTick != nil {
		m.onTick(remaining)
	}
}
