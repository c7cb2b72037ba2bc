package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleModerator.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestUser_DerivedRoles(t *testing.T) {
	tests := []struct {
		name          string
		user          User
		wantAdmin     bool
		wantModerator bool
	}{
		{"plain user", User{Role: RoleUser}, false, false},
		{"moderator", User{Role: RoleModerator}, false, true},
		{"admin role", User{Role: RoleAdmin}, true, false},
		{"superuser with user role", User{Role: RoleUser, IsSuperuser: true}, true, false},
		{"superuser moderator", User{Role: RoleModerator, IsSuperuser: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAdmin, tt.user.IsAdmin())
			assert.Equal(t, tt.wantModerator, tt.user.IsModerator())
		})
	}
}
