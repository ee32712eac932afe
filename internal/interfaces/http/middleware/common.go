package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// MaxRequestIDLength bounds client supplied request ids
const MaxRequestIDLength = 128

// RequestID adds a request id to each request, reusing a sane client value
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows no origin until one is configured
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", "Authorization", RequestIDHeader, "Idempotency-Key", "Accept", "Origin"},
		ExposeHeaders: []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
}

// CORS answers preflight requests and sets CORS headers for allowed origins.
// Requests from other origins are served without CORS headers, which makes
// the browser withhold the response.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	allowed := func(origin string) string {
		switch {
		case origin == "":
			return ""
		case wildcard:
			return "*"
		case slices.Contains(cfg.AllowOrigins, origin):
			return origin
		}
		return ""
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := allowed(c.GetHeader("Origin")); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				h.Add("Vary", "Origin")
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}
			if cfg.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityConfig selects the security headers to send
type SecurityConfig struct {
	// HSTS is only honoured by browsers over HTTPS
	HSTS bool
	// CSP applies to API responses; the swagger UI is exempt so its assets load
	CSP string
}

// DefaultSecurityConfig suits a JSON API that serves no documents
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		CSP: "default-src 'none'; frame-ancestors 'none'",
	}
}

// Secure sets security headers on every response
func Secure(cfg SecurityConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.HSTS {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		if cfg.CSP != "" && !strings.HasPrefix(c.Request.URL.Path, "/swagger") {
			h.Set("Content-Security-Policy", cfg.CSP)
		}
		c.Next()
	}
}
