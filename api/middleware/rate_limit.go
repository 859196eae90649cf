package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// KeyFunc derives the bucket key for a request.
type KeyFunc func(c echo.Context) string

// RateLimiter keeps one token bucket per key. Stale buckets are dropped
// after ttl of inactivity.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
	ttl      time.Duration
}

func NewRateLimiter(r rate.Limit, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     r,
		burst:    burst,
		ttl:      ttl,
	}
}

// Middleware consumes a token per request.
func (l *RateLimiter) Middleware(key KeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.getLimiter(key(c)).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

// FailureCounting rejects when the bucket is empty but consumes a token
// only after the downstream handler fails. Successful logins therefore
// never count against the caller.
func (l *RateLimiter) FailureCounting(key KeyFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := l.getLimiter(key(c))
			if limiter.Tokens() < 1 {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many failed attempts")
			}
			err := next(c)
			if requestFailed(c, err) {
				_ = limiter.Allow()
			}
			return err
		}
	}
}

func requestFailed(c echo.Context, err error) bool {
	if err != nil {
		return true
	}
	return c.Response().Status >= http.StatusBadRequest
}

// IPKey buckets by client address.
func IPKey(c echo.Context) string {
	return c.RealIP()
}

// IPEmailKey buckets by client address plus the attempted email, peeking
// at the JSON body and restoring it for the handler.
func IPEmailKey(c echo.Context) string {
	request := c.Request()
	if request.Body == nil {
		return c.RealIP()
	}
	data, err := io.ReadAll(request.Body)
	request.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return c.RealIP()
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return c.RealIP()
	}
	return c.RealIP() + body.Email
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if limiter, ok := l.limiters[key]; ok {
		l.lastSeen[key] = time.Now()
		return limiter
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters[key] = limiter
	l.lastSeen[key] = time.Now()
	l.cleanup()
	return limiter
}

func (l *RateLimiter) cleanup() {
	if l.ttl == 0 {
		return
	}
	cutoff := time.Now().Add(-l.ttl)
	for key, last := range l.lastSeen {
		if last.Before(cutoff) {
			delete(l.lastSeen, key)
			delete(l.limiters, key)
		}
	}
}
