package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser(1, "admin", "Admin@Example.com", "password", RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "admin", u.Username)
	assert.Equal(t, "admin@example.com", u.Email, "email is normalized to lower case")
	assert.Equal(t, RoleAdmin, u.Role)
	assert.NotEqual(t, "password", u.PasswordHash, "password must never be stored in plaintext")
	assert.True(t, u.VerifyPassword("password"))
	assert.False(t, u.VerifyPassword("wrong"))
}

func TestNewUser_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     Role
	}{
		{"empty username", "", "a@b.com", "password", RoleUser},
		{"empty email", "bob", "", "password", RoleUser},
		{"bad email", "bob", "not-an-email", "password", RoleUser},
		{"short password", "bob", "a@b.com", "short", RoleUser},
		{"bad role", "bob", "a@b.com", "password", Role("Root")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(1, tt.username, tt.email, tt.password, tt.role)
			assert.Error(t, err)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	u, err := NewUser(1, "bob", "bob@example.com", "password", RoleUser)
	require.NoError(t, err)

	require.NoError(t, u.ChangePassword("newpassword"))
	assert.True(t, u.VerifyPassword("newpassword"))
	assert.False(t, u.VerifyPassword("password"))

	assert.Error(t, u.ChangePassword("short"))
	assert.True(t, u.VerifyPassword("newpassword"))
}

func TestRole_Capabilities(t *testing.T) {
	assert.True(t, RoleAdmin.CanManageCatalog())
	assert.True(t, RoleAdmin.CanManageUsers())
	assert.True(t, RoleAdmin.CanViewAllOrders())
	assert.True(t, RoleAdmin.CanTransitionOrders())
	assert.True(t, RoleAdmin.CanViewDashboard())

	assert.False(t, RoleUser.CanManageCatalog())
	assert.False(t, RoleUser.CanManageUsers())
	assert.False(t, RoleUser.CanViewAllOrders())
	assert.False(t, RoleUser.CanTransitionOrders())
	assert.False(t, RoleUser.CanViewDashboard())
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleUser.IsValid())
	assert.False(t, Role("Root").IsValid())
	assert.False(t, Role("").IsValid())
}
