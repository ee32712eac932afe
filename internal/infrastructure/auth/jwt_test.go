package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  5 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refreshSecret)
}

func TestJWTService_GenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(42, "ada")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), pair.AccessTokenExpiresAt, 5*time.Second)

	t.Run("access token carries the user", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "ada", claims.Username)
		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)

		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
		assert.Empty(t, claims.Username)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(pair.AccessToken)
		assert.Error(t, err)
	})
}

func TestJWTService_Validate(t *testing.T) {
	svc := newTestJWTService()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-chars!!", Issuer: "test-issuer", AccessTokenExpiration: time.Minute})
		pair, err := other.GenerateTokenPair(1, "x")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "elsewhere", AccessTokenExpiration: time.Minute})
		pair, err := other.GenerateTokenPair(1, "x")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(1, "x")
		require.NoError(t, err)

		later := newTestJWTService()
		later.now = func() time.Time { return time.Now().Add(time.Hour) }
		_, err = later.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		future := newTestJWTService()
		future.now = func() time.Time { return time.Now().Add(time.Hour) }
		pair, err := future.GenerateTokenPair(1, "x")
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("none algorithm is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, TokenType: TokenTypeAccess})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		claims := svc.claims(0, "", TokenTypeAccess, time.Now(), time.Minute)
		signed, err := svc.sign(claims, svc.accessSecret)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}

func TestJWTService_RefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(7, "grace")
	require.NoError(t, err)

	t.Run("issues a new pair for the same user", func(t *testing.T) {
		refreshed, err := svc.RefreshTokenPair(pair.RefreshToken, "grace")
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "grace", claims.Username)
	})

	t.Run("rejects an access token", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.AccessToken, "grace")
		assert.Error(t, err)
	})
}
