package auth

import "spotly/internal/model"

// Permission names an action guarded by role.
type Permission string

const (
	PermCreateSpot        Permission = "spot:create"
	PermUpdateSpot        Permission = "spot:update"
	PermDeleteSpot        Permission = "spot:delete"
	PermModerateSpots     Permission = "spot:moderate"
	PermModerateReviews   Permission = "review:moderate"
	PermManageUsers       Permission = "user:manage"
	PermViewAnalytics     Permission = "platform:analytics"
	PermBusinessDashboard Permission = "business:dashboard"
)

var permissions = map[Permission][]model.Role{
	PermCreateSpot:        {model.RoleBusinessOwner, model.RoleAdmin},
	PermUpdateSpot:        {model.RoleBusinessOwner, model.RoleAdmin},
	PermDeleteSpot:        {model.RoleAdmin},
	PermModerateSpots:     {model.RoleAdmin},
	PermModerateReviews:   {model.RoleAdmin, model.RoleModerator},
	PermManageUsers:       {model.RoleAdmin},
	PermViewAnalytics:     {model.RoleAdmin},
	PermBusinessDashboard: {model.RoleBusinessOwner, model.RoleAdmin},
}

// Can reports whether role grants perm. Unknown permissions are denied.
func Can(role model.Role, perm Permission) bool {
	for _, r := range permissions[perm] {
		if r == role {
			return true
		}
	}
	return false
}
