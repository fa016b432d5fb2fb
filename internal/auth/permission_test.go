package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spotly/internal/model"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role model.Role
		perm Permission
		want bool
	}{
		{model.RoleUser, PermCreateSpot, false},
		{model.RoleBusinessOwner, PermCreateSpot, true},
		{model.RoleAdmin, PermCreateSpot, true},
		{model.RoleBusinessOwner, PermDeleteSpot, false},
		{model.RoleAdmin, PermDeleteSpot, true},
		{model.RoleModerator, PermModerateReviews, true},
		{model.RoleModerator, PermModerateSpots, false},
		{model.RoleUser, PermModerateReviews, false},
		{model.RoleBusinessOwner, PermBusinessDashboard, true},
		{model.RoleUser, PermBusinessDashboard, false},
		{model.RoleAdmin, Permission("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.perm), func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.perm))
		})
	}
}
