// Package access gates UI content on the current user's roles. The check is
// advisory only; the API enforces authorization on its own.
package access

import (
	"github.com/jzahidzamacona/Fronty-sub001/session"
	"github.com/jzahidzamacona/Fronty-sub001/token"
)

// Gate is a role predicate. Empty lists are not checked.
type Gate struct {
	AnyOf  []string
	AllOf  []string
	NoneOf []string
}

// Allows evaluates the gate against roles. NoneOf is checked first and
// denies outright, then AllOf, then AnyOf. A gate with no lists allows.
func (g Gate) Allows(roles []string) bool {
	have := token.NewRoleSet(roles...).Normalized()
	contains := func(role string) bool {
		_, ok := have[token.NormalizeRole(role)]
		return ok
	}

	for _, role := range g.NoneOf {
		if contains(role) {
			return false
		}
	}
	for _, role := range g.AllOf {
		if !contains(role) {
			return false
		}
	}
	if len(g.AnyOf) == 0 {
		return true
	}
	for _, role := range g.AnyOf {
		if contains(role) {
			return true
		}
	}
	return false
}

// AllowsUser evaluates the gate for u. A nil user has no roles.
func (g Gate) AllowsUser(u *session.User) bool {
	if u == nil {
		return g.Allows(nil)
	}
	return g.Allows(u.Roles)
}

// Render returns content when the gate allows u and fallback otherwise.
func Render[T any](g Gate, u *session.User, content, fallback T) T {
	if g.AllowsUser(u) {
		return content
	}
	return fallback
}
