package service

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gearguard/pkg/errors"
)

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)

	access, refresh, err := svc.GenerateTokens("8d1c1c9e-4b7a-4a55-9b44-5d6c0f1f0a11", "manager")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "8d1c1c9e-4b7a-4a55-9b44-5d6c0f1f0a11", claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.False(t, claims.IsRefreshToken)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, _, err := NewJWTService("other", time.Hour, time.Hour).GenerateTokens("u1", "admin")
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour, time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_Expired(t *testing.T) {
	claims := &JwtCustomClaim{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTService("secret", time.Hour, time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
