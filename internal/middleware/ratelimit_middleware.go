package middleware

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/nadil1995/notehive2/internal/redis"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
)

type window struct {
	count   int64
	resetAt time.Time
}

// localWindows is the in-process fallback when Redis is not configured. Per
// instance only, like the source's express-rate-limit.
type localWindows struct {
	mu      sync.Mutex
	windows map[string]*window
}

func (l *localWindows) increment(key string, d time.Duration) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(d)}
		l.windows[key] = w
	}
	w.count++
	return w.count
}

// RateLimit enforces a fixed-window counter per client IP. Localhost is
// skipped for development, matching the source.
func RateLimit(cache *redis.Service, name string, max int64, windowSize time.Duration, message string) gin.HandlerFunc {
	local := &localWindows{windows: make(map[string]*window)}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "127.0.0.1" || ip == "::1" {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", name, ip)

		var count int64
		if cache != nil {
			n, err := cache.IncrementWindow(c.Request.Context(), key, windowSize)
			if err != nil {
				log.Printf("Rate limit counter error for %s: %v", key, err)
				c.Next()
				return
			}
			count = n
		} else {
			count = local.increment(key, windowSize)
		}

		if count > max {
			c.JSON(http.StatusTooManyRequests, responses.NewErrorResponse(message, nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
