package models

import "github.com/yeremiapane/restaurant-portal/policy"

// Session is the authenticated caller. It is passed explicitly into every
// service call; the bearer token is forwarded to the store unchanged.
type Session struct {
	UserID uint
	Role   string
	Token  string
	Name   string
	Email  string
	Phone  string
}

// LifecycleRole maps the token role onto the transition roles.
func (s Session) LifecycleRole() policy.Role {
	return policy.ParseRole(s.Role)
}

// IsAdmin reports whether the caller has elevated access.
func (s Session) IsAdmin() bool {
	return s.LifecycleRole() == policy.RoleAdmin
}
