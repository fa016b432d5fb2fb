package model

import "fmt"

// Role is the closed set of user roles.
type Role string

const (
	RoleUser          Role = "user"
	RoleBusinessOwner Role = "business_owner"
	RoleAdmin         Role = "admin"
	RoleModerator     Role = "moderator"
)

// Roles lists every role in display order.
var Roles = []Role{RoleUser, RoleBusinessOwner, RoleAdmin, RoleModerator}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBusinessOwner, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ModerationStatus is shared by spots and reviews.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)
