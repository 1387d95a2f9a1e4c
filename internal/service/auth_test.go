package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-booking-backend/internal/domain"
	"rental-booking-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	svc := NewAuthService([]Operator{{Email: "Ops@Example.com", Name: "Ops", PasswordHash: string(hash)}}, tokens)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		token, expiresAt, err := svc.Login(ctx, "ops@example.com", "s3cret")
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := tokens.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "Ops@Example.com", claims.Subject)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ops@example.com", "nope")
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("Unknown operator", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "someone@example.com", "s3cret")
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})
}
