package token

import (
	"strings"

	"github.com/jzahidzamacona/Fronty-sub001/internal/utils"
)

const rolePrefix = "ROLE_"

// RoleSet is an ordered set of role names as they appear in the token, with
// any ROLE_ prefix removed. Case is preserved; comparisons normalize.
type RoleSet []string

// NewRoleSet strips prefixes, drops empty names and removes exact duplicates
// while keeping first-seen order.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, 0, len(roles))
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		role = StripRolePrefix(role)
		if role == "" {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		set = append(set, role)
	}
	return set
}

// StripRolePrefix removes a leading ROLE_, matched case-insensitively.
func StripRolePrefix(role string) string {
	if len(role) >= len(rolePrefix) && strings.EqualFold(role[:len(rolePrefix)], rolePrefix) {
		return role[len(rolePrefix):]
	}
	return role
}

// NormalizeRole is the comparison form of a role: prefix stripped, upper case.
func NormalizeRole(role string) string {
	return strings.ToUpper(StripRolePrefix(role))
}

// Normalized returns the comparison set.
func (s RoleSet) Normalized() map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for _, role := range s {
		out[NormalizeRole(role)] = struct{}{}
	}
	return out
}

// Has reports whether role is in the set after normalization.
func (s RoleSet) Has(role string) bool {
	want := NormalizeRole(role)
	for _, r := range s {
		if NormalizeRole(r) == want {
			return true
		}
	}
	return false
}

// ExtractRoles resolves the role claim. Sources are tried in order and the
// first one present is used alone:
//
//	roles        array of strings
//	authorities  array of strings or {"authority": "..."} objects
//	scope        space separated string
func ExtractRoles(claims map[string]any) RoleSet {
	if list, ok := utils.StringSlice(claims["roles"]); ok {
		return NewRoleSet(list...)
	}

	switch authorities := claims["authorities"].(type) {
	case []string:
		return NewRoleSet(authorities...)
	case []any:
		roles := make([]string, 0, len(authorities))
		for _, item := range authorities {
			switch a := item.(type) {
			case string:
				roles = append(roles, a)
			case map[string]any:
				if name, ok := a["authority"].(string); ok {
					roles = append(roles, name)
				}
			}
		}
		return NewRoleSet(roles...)
	}

	if scope, ok := claims["scope"].(string); ok {
		return NewRoleSet(strings.Fields(scope)...)
	}

	return RoleSet{}
}
