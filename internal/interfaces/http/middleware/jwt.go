package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Context keys set by the authentication middleware
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "user_id"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// AccessTokenValidator validates bearer access tokens
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// OptionalAuth identifies the caller when a bearer token is sent and lets
// anonymous requests through. A token that is sent but invalid is rejected
// with 401 rather than silently downgraded to anonymous.
func OptionalAuth(validator AccessTokenValidator, log *zap.Logger) gin.HandlerFunc {
	return authenticate(validator, log, false)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(validator AccessTokenValidator, log *zap.Logger) gin.HandlerFunc {
	return authenticate(validator, log, true)
}

func authenticate(validator AccessTokenValidator, log *zap.Logger, required bool) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			if required {
				abortUnauthorized(c, dto.ErrCodeUnauthorized, dto.MsgUnauthenticated)
				return
			}
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Authorization header must contain two space-delimited values")
			return
		}

		claims, err := validator.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			log.Debug("Rejected bearer token", zap.Error(err))
			code := dto.ErrCodeTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			abortUnauthorized(c, code, dto.MsgTokenInvalid)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)

		ctx, reqLogger := logger.WithUserID(c.Request.Context(), logger.GetGinLogger(c), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		logger.SetGinLogger(c, reqLogger)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, detail string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, detail))
}

// GetUserID returns the authenticated user id, if any
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(JWTUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// GetClaims returns the validated claims, if any
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
