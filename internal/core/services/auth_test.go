// internal/core/services/auth_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailflow/pos-be/internal/core/services"
	"github.com/retailflow/pos-be/test/helpers"
)

func TestAuthenticator_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.MinCost)
	require.NoError(t, err)

	users := map[string]string{
		"cashier1": string(hash),
		"legacy":   "plaintext-pw",
	}

	t.Run("bcrypt credentials", func(t *testing.T) {
		auth := services.NewAuthenticator(users, 3, helpers.TestLogger())

		session, err := auth.Login(ctx, "cashier1", "changeme")
		require.NoError(t, err)
		assert.Equal(t, "cashier1", session.Username)
		assert.NotEmpty(t, session.ID)
		assert.False(t, session.StartedAt.IsZero())
	})

	t.Run("legacy plaintext credentials", func(t *testing.T) {
		auth := services.NewAuthenticator(users, 3, helpers.TestLogger())

		session, err := auth.Login(ctx, "legacy", "plaintext-pw")
		require.NoError(t, err)
		assert.Equal(t, "legacy", session.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		auth := services.NewAuthenticator(users, 3, helpers.TestLogger())

		_, err := auth.Login(ctx, "cashier1", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.Equal(t, 2, auth.AttemptsRemaining())
	})

	t.Run("unknown user", func(t *testing.T) {
		auth := services.NewAuthenticator(users, 3, helpers.TestLogger())

		_, err := auth.Login(ctx, "ghost", "whatever")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("third failure locks the gate", func(t *testing.T) {
		auth := services.NewAuthenticator(users, 3, helpers.TestLogger())

		_, err := auth.Login(ctx, "cashier1", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		_, err = auth.Login(ctx, "cashier1", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		_, err = auth.Login(ctx, "cashier1", "wrong")
		assert.ErrorIs(t, err, services.ErrLockedOut)

		// Even the right password bounces once locked.
		_, err = auth.Login(ctx, "cashier1", "changeme")
		assert.ErrorIs(t, err, services.ErrLockedOut)
		assert.Equal(t, 0, auth.AttemptsRemaining())
	})

	t.Run("success resets the failure counter", func(t *testing.T) {
		auth := services.NewAuthenticator(users, 3, helpers.TestLogger())

		_, err := auth.Login(ctx, "cashier1", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)

		_, err = auth.Login(ctx, "cashier1", "changeme")
		require.NoError(t, err)
		assert.Equal(t, 3, auth.AttemptsRemaining())
	})
}
