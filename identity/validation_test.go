package identity_test

import (
	"testing"

	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	t.Run("valid email", func(t *testing.T) {
		err := identity.ValidateEmail("jane.doe@example.com")
		require.NoError(t, err)
	})

	t.Run("empty email", func(t *testing.T) {
		err := identity.ValidateEmail("")
		require.Error(t, err)
		require.Contains(t, err.Error(), "email is required")
	})

	t.Run("whitespace only", func(t *testing.T) {
		err := identity.ValidateEmail("   ")
		require.Error(t, err)
		require.Contains(t, err.Error(), "email is required")
	})

	t.Run("missing at sign", func(t *testing.T) {
		err := identity.ValidateEmail("janeexample.com")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid email format")
	})

	t.Run("missing local part", func(t *testing.T) {
		err := identity.ValidateEmail("@example.com")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid email format")
	})

	t.Run("missing domain", func(t *testing.T) {
		err := identity.ValidateEmail("jane@")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid email format")
	})

	t.Run("embedded whitespace", func(t *testing.T) {
		err := identity.ValidateEmail("jane doe@example.com")
		require.Error(t, err)
		require.Contains(t, err.Error(), "whitespace")
	})
}

func TestValidatePasswordStrength(t *testing.T) {
	t.Run("valid password", func(t *testing.T) {
		err := identity.ValidatePasswordStrength("Passw0rdOk")
		require.NoError(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		err := identity.ValidatePasswordStrength("Ab1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("no uppercase", func(t *testing.T) {
		err := identity.ValidatePasswordStrength("passw0rdok")
		require.Error(t, err)
		require.Contains(t, err.Error(), "uppercase")
	})

	t.Run("no lowercase", func(t *testing.T) {
		err := identity.ValidatePasswordStrength("PASSW0RDOK")
		require.Error(t, err)
		require.Contains(t, err.Error(), "lowercase")
	})

	t.Run("no number", func(t *testing.T) {
		err := identity.ValidatePasswordStrength("PasswordOk")
		require.Error(t, err)
		require.Contains(t, err.Error(), "number")
	})

	t.Run("errors carry the invalid-input reason", func(t *testing.T) {
		err := identity.ValidatePasswordStrength("short")
		var authErr *identity.AuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, identity.ReasonInvalidInput, authErr.Reason)
	})
}
