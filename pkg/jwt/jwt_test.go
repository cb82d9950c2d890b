package jwt

import (
	"testing"
	"time"

	"go-clinic-scheduling/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(accessExpiry time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	service := newService(15 * time.Minute)

	token, tokenID, err := service.GenerateAccessToken(42, "doctor", "siti@clinic.test")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, tokenID)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "doctor", claims.UserType)
	assert.Equal(t, "siti@clinic.test", claims.Email)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestTokenTypesAreDistinct(t *testing.T) {
	service := newService(15 * time.Minute)

	access, accessID, err := service.GenerateAccessToken(7, "patient", "budi@mail.test")
	require.NoError(t, err)
	refresh, refreshID, err := service.GenerateRefreshToken(7, "patient", "budi@mail.test")
	require.NoError(t, err)

	assert.NotEqual(t, accessID, refreshID)

	accessClaims, err := service.ValidateToken(access)
	require.NoError(t, err)
	refreshClaims, err := service.ValidateToken(refresh)
	require.NoError(t, err)

	assert.Equal(t, AccessToken, accessClaims.TokenType)
	assert.Equal(t, RefreshToken, refreshClaims.TokenType)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	service := newService(15 * time.Minute)
	token, _, err := service.GenerateAccessToken(42, "doctor", "siti@clinic.test")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:        "different-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	service := newService(-1 * time.Minute)
	token, _, err := service.GenerateAccessToken(42, "doctor", "siti@clinic.test")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbage(t *testing.T) {
	service := newService(15 * time.Minute)
	_, err := service.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
