package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type keyedRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       *sync.RWMutex
	r        rate.Limit // jumlah request per detik
	b        int        // burst (kapasitas kantong)
}

func newKeyedRateLimiter(r rate.Limit, b int) *keyedRateLimiter {
	return &keyedRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		mu:       &sync.RWMutex{},
		r:        r,
		b:        b,
	}
}

func (k *keyedRateLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}

	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := newKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests from this IP"})
			return
		}
		c.Next()
	}
}

const maxPeekBytes = 1 << 20

// peekEmployeeID reads the employee id out of the JSON body without
// consuming it; the body is put back so the handler can still bind it.
// Runs before binding, so malformed bodies just yield an empty key.
func peekEmployeeID(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBytes))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var peek struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(peek.EmployeeID))
}

// RateLimitByEmployee throttles chat turns per employee so one noisy
// session cannot starve the rest. Falls back to the client IP when the
// body carried no employee id.
func RateLimitByEmployee(r rate.Limit, b int) gin.HandlerFunc {
	limiter := newKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		key := peekEmployeeID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests, slow down"})
			return
		}
		c.Next()
	}
}
