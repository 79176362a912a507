package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("Jane Doe", "jane@example.com", "secret123", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.FullName)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, RoleUser, user.Role)
	assert.True(t, user.Active)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestNewUserNormalizesEmail(t *testing.T) {
	user, err := NewUser("Jane Doe", "  Jane@Example.COM ", "secret123", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestNewUserDefaultsRole(t *testing.T) {
	user, err := NewUser("Jane Doe", "jane@example.com", "secret123", "")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
}

func TestNewUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		email    string
		password string
		role     Role
	}{
		{"empty name", "", "jane@example.com", "secret123", RoleUser},
		{"empty email", "Jane", "", "secret123", RoleUser},
		{"bad email", "Jane", "not-an-email", "secret123", RoleUser},
		{"short password", "Jane", "jane@example.com", "ab1", RoleUser},
		{"password without number", "Jane", "jane@example.com", "onlyletters", RoleUser},
		{"password without letter", "Jane", "jane@example.com", "12345678", RoleUser},
		{"unknown role", "Jane", "jane@example.com", "secret123", Role("root")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.fullName, tt.email, tt.password, tt.role)
			assert.Error(t, err)
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	user, err := NewUser("Jane Doe", "jane@example.com", "secret123", RoleUser)
	require.NoError(t, err)

	assert.True(t, user.VerifyPassword("secret123"))
	assert.False(t, user.VerifyPassword("wrong"))
}

func TestChangePassword(t *testing.T) {
	user, err := NewUser("Jane Doe", "jane@example.com", "secret123", RoleUser)
	require.NoError(t, err)

	err = user.ChangePassword("wrong", "newpass456")
	assert.Error(t, err)

	err = user.ChangePassword("secret123", "newpass456")
	require.NoError(t, err)
	assert.True(t, user.VerifyPassword("newpass456"))
	assert.False(t, user.VerifyPassword("secret123"))
}

func TestDeactivate(t *testing.T) {
	user, err := NewUser("Jane Doe", "jane@example.com", "secret123", RoleUser)
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.CanLogin())
	assert.Error(t, user.Deactivate())
}
