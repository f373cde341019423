package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims is the canonical view of a decoded token payload. The loosely
// typed role sources (roles, authorities, scope) are resolved into Roles at
// decode time.
type Claims struct {
	Subject         string
	Username        string
	Roles           RoleSet
	ExpiresAtMillis *int64 // exp*1000 rounded down, nil when the token never expires
	EmployeeID      *int64
	Raw             jwtlib.MapClaims
}

// ExpiresTime returns the expiry as a time, or nil when absent.
func (c *Claims) ExpiresTime() *time.Time {
	if c == nil || c.ExpiresAtMillis == nil {
		return nil
	}
	t := time.UnixMilli(*c.ExpiresAtMillis)
	return &t
}

// IsExpired reports whether the expiry claim is present and exp*1000 <= now
// in epoch milliseconds. Tokens without an expiry never expire.
func IsExpired(c *Claims, now time.Time) bool {
	if c == nil || c.ExpiresAtMillis == nil {
		return false
	}
	return *c.ExpiresAtMillis <= now.UnixMilli()
}
