package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter allows at most limit requests per window for each client IP
// on paths under /api/. Other paths pass through untouched.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		visitors = make(map[string]*rate.Limiter)
	)
	every := rate.Every(window / time.Duration(limit))

	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}

		ip := c.ClientIP()
		mu.Lock()
		limiter, ok := visitors[ip]
		if !ok {
			limiter = rate.NewLimiter(every, limit)
			visitors[ip] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests from this IP, please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
