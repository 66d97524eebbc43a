// ABOUTME: Tests for tolerant role classification
// ABOUTME: Covers flat name, flat id, nested role object and precedence

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389/antecedentes/internal/model"
)

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		want RoleKind
	}{
		{name: "nil user", user: nil, want: RoleKindView},
		{name: "flat admin name", user: &model.User{RoleName: "ADMIN"}, want: RoleKindAdmin},
		{name: "flat admin name lowercase", user: &model.User{RoleName: " admin "}, want: RoleKindAdmin},
		{name: "flat admin id", user: &model.User{RoleID: 1}, want: RoleKindAdmin},
		{name: "nested admin name", user: &model.User{Role: &model.Role{Name: "Admin"}}, want: RoleKindAdmin},
		{name: "nested admin id", user: &model.User{Role: &model.Role{ID: 1}}, want: RoleKindAdmin},
		{name: "flat view name", user: &model.User{RoleName: "view"}, want: RoleKindView},
		{name: "flat view id", user: &model.User{RoleID: 4}, want: RoleKindView},
		{name: "nested view", user: &model.User{Role: &model.Role{ID: 4, Name: "VIEW"}}, want: RoleKindView},
		{name: "moderate", user: &model.User{RoleID: 2, RoleName: "MODERATE"}, want: RoleKindUser},
		{name: "user", user: &model.User{RoleID: 3, RoleName: "USER"}, want: RoleKindUser},
		{name: "no role info", user: &model.User{Username: "x"}, want: RoleKindUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRole(tt.user))
		})
	}
}

func TestRoleKind_Permissions(t *testing.T) {
	assert.True(t, RoleKindAdmin.CanWrite())
	assert.True(t, RoleKindAdmin.IsAdmin())
	assert.True(t, RoleKindUser.CanWrite())
	assert.False(t, RoleKindUser.IsAdmin())
	assert.False(t, RoleKindView.CanWrite())
	assert.False(t, RoleKindView.IsAdmin())

	assert.Equal(t, RoleKindView, RoleKindForName("VIEW"))
	assert.Equal(t, RoleKindUser, RoleKindForName("MODERATE"))
}
