package config

import "time"

type SecurityConfig interface {
	GetIdleLimit() time.Duration
	GetIdleWarnLead() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetIdleLimit is the inactivity period after which the session is logged out.
func (Security) GetIdleLimit() time.Duration {
	return GetDuration("IDLE_LIMIT", 30*time.Minute)
}

// GetIdleWarnLead is how long before the idle limit the warning is shown.
func (Security) GetIdleWarnLead() time.Duration {
	return GetDuration("IDLE_WARN_LEAD", 2*time.Minute)
}
