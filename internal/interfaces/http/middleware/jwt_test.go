package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-characters",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "storefront-test",
	})
}

func authEngine(mw gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.GET("/", mw, func(c *gin.Context) {
		userID, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authenticated": ok})
	})
	return engine
}

func get(engine *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestOptionalAuth(t *testing.T) {
	svc := newJWTService(time.Minute)
	pair, err := svc.GenerateTokenPair(12, "ada")
	require.NoError(t, err)
	engine := authEngine(OptionalAuth(svc, nil))

	t.Run("anonymous passes through", func(t *testing.T) {
		w := get(engine, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":0,"authenticated":false}`, w.Body.String())
	})

	t.Run("valid token identifies the user", func(t *testing.T) {
		w := get(engine, BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":12,"authenticated":true}`, w.Body.String())
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		w := get(engine, BearerPrefix+"not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
		assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	})

	t.Run("refresh token cannot authenticate", func(t *testing.T) {
		w := get(engine, BearerPrefix+pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := get(engine, "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		w := get(authEngine(RequireAuth(newJWTService(time.Minute), nil)), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication credentials were not provided.")
	})

	t.Run("expired token", func(t *testing.T) {
		svc := newJWTService(-time.Minute)
		pair, err := svc.GenerateTokenPair(1, "ada")
		require.NoError(t, err)

		w := get(authEngine(RequireAuth(svc, nil)), BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("claims are available downstream", func(t *testing.T) {
		svc := newJWTService(time.Minute)
		pair, err := svc.GenerateTokenPair(3, "grace")
		require.NoError(t, err)

		engine := gin.New()
		engine.GET("/", RequireAuth(svc, nil), func(c *gin.Context) {
			claims := GetClaims(c)
			require.NotNil(t, claims)
			c.String(http.StatusOK, claims.Username)
		})

		w := get(engine, BearerPrefix+pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "grace", w.Body.String())
	})
}
