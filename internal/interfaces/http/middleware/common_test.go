package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Len(t, w.Body.String(), 36)
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps a client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-123")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, "client-123", w.Body.String())
	})

	t.Run("replaces an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Len(t, w.Body.String(), 36)
	})
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example"}
	engine := gin.New()
	engine.Use(CORS(cfg))
	engine.POST("/api/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })

	t.Run("preflight from an allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
		req.Header.Set("Origin", "https://shop.example")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
	})

	t.Run("other origins get no cors headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecure(t *testing.T) {
	engine := gin.New()
	engine.Use(Secure(SecurityConfig{HSTS: true, CSP: "default-src 'none'"}))
	engine.GET("/api/brands", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/swagger/index.html", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("api responses", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/brands", nil))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "default-src 'none'", w.Header().Get("Content-Security-Policy"))
		assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("swagger ui is exempt from csp", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
	})
}

func TestBodyLimit(t *testing.T) {
	engine := gin.New()
	engine.Use(BodyLimit(16))
	engine.POST("/", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	t.Run("small body", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"0123456789abcdef"}`)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})
}
