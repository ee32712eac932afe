package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window request counter keyed by client
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type window struct {
	used    int
	resetAt time.Time
}

// NewRateLimiter allows limit requests per period for each key
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow consumes one request for key and reports whether it fits the window,
// along with the requests left in it
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(rl.period)}
		rl.clients[key] = w
	}
	if w.used >= rl.limit {
		return false, 0
	}
	w.used++
	return true, rl.limit - w.used
}

// Close stops the cleanup goroutine
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(2 * rl.period)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictExpired()
		}
	}
}

func (rl *RateLimiter) evictExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, w := range rl.clients {
		if !now.Before(w.resetAt) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit throttles by client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	limit := strconv.Itoa(limiter.limit)
	return func(c *gin.Context) {
		allowed, remaining := limiter.Allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(limiter.period.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimited, dto.MsgRateLimited))
			return
		}
		c.Next()
	}
}
