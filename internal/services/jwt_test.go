package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KP12130/KPCasinoAI/internal/services"
)

func TestJWTService_SignAndVerify(t *testing.T) {
	svc := services.NewJWTService("test-secret")

	identity := services.Identity{
		SubjectID: "subject-1",
		Email:     "p1@example.com",
		Name:      "Player One",
	}

	token, err := svc.Sign(identity, time.Hour)
	require.NoError(t, err)

	verified, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity, verified)
}

func TestJWTService_RejectsBadTokens(t *testing.T) {
	svc := services.NewJWTService("test-secret")

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not-a-token")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := services.NewJWTService("other-secret")
		token, err := other.Sign(services.Identity{SubjectID: "subject-1"}, time.Hour)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := svc.Sign(services.Identity{SubjectID: "subject-1"}, -time.Minute)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := svc.Sign(services.Identity{Email: "p1@example.com"}, time.Hour)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})
}
