package idle

import (
	"time"

	"github.com/jzahidzamacona/Fronty-sub001/internal/clock"
	apperrors "github.com/jzahidzamacona/Fronty-sub001/internal/errors"
)

// Phase is the idle state of a monitored context.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseWarning
	PhaseLoggingOut
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "ACTIVE"
	case PhaseWarning:
		return "WARNING"
	case PhaseLoggingOut:
		return "LOGGING_OUT"
	default:
		return "UNKNOWN"
	}
}

// Activity is a recognized user activity signal.
type Activity int

const (
	ActivityPointerMove Activity = iota
	ActivityPointerDown
	ActivityKeyDown
	ActivityScroll
	ActivityTouchStart
	ActivityVisibilityRegained
)

func (a Activity) String() string {
	switch a {
	case ActivityPointerMove:
		return "pointermove"
	case ActivityPointerDown:
		return "pointerdown"
	case ActivityKeyDown:
		return "keydown"
	case ActivityScroll:
		return "scroll"
	case ActivityTouchStart:
		return "touchstart"
	case ActivityVisibilityRegained:
		return "visibilitychange"
	default:
		return "unknown"
	}
}

// Config holds the two idle thresholds. IdleLimit is measured from the last
// activity to the forced logout; the warning starts WarnLead before it.
type Config struct {
	IdleLimit time.Duration
	WarnLead  time.Duration
	Clock     clock.Clock
}

// Validate enforces 0 < WarnLead < IdleLimit.
func (c Config) Validate() error {
	if c.IdleLimit <= 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "idle limit must be positive, got %s", c.IdleLimit)
	}
	if c.WarnLead <= 0 || c.WarnLead >= c.IdleLimit {
		return apperrors.Wrapf(apperrors.ErrInvalidConfig, "warn lead %s must be positive and below idle limit %s", c.WarnLead, c.IdleLimit)
	}
	return nil
}

// WarnAfter is the elapsed idle time at which the warning begins.
func (c Config) WarnAfter() time.Duration {
	return c.IdleLimit - c.WarnLead
}

// PhaseAt maps elapsed idle time to a phase.
func (c Config) PhaseAt(elapsed time.Duration) Phase {
	switch {
	case elapsed >= c.IdleLimit:
		return PhaseLoggingOut
	case elapsed >= c.WarnAfter():
		return PhaseWarning
	default:
		return PhaseActive
	}
}
