package session

import (
	"time"

	"github.com/jzahidzamacona/Fronty-sub001/token"
)

// Pair is the persisted token pair. Both members are required.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User is the current user exposed to UI collaborators.
type User struct {
	Username   string
	Roles      token.RoleSet
	EmployeeID *int64
	ExpiresAt  *time.Time
}

// HasRole compares after ROLE_ stripping and upper-casing.
func (u *User) HasRole(role string) bool {
	return u != nil && u.Roles.Has(role)
}

func newUser(claims *token.Claims, defaultUsername string) *User {
	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	if username == "" {
		username = defaultUsername
	}
	return &User{
		Username:   username,
		Roles:      claims.Roles,
		EmployeeID: claims.EmployeeID,
		ExpiresAt:  claims.ExpiresTime(),
	}
}

func sameUser(a, b *User) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Username != b.Username || len(a.Roles) != len(b.Roles) {
		return false
	}
	for i := range a.Roles {
		if a.Roles[i] != b.Roles[i] {
			return false
		}
	}
	if (a.EmployeeID == nil) != (b.EmployeeID == nil) || (a.EmployeeID != nil && *a.EmployeeID != *b.EmployeeID) {
		return false
	}
	if (a.ExpiresAt == nil) != (b.ExpiresAt == nil) || (a.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt)) {
		return false
	}
	return true
}
