package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/citysearch/internal/errors"
	"github.com/zfogg/citysearch/internal/logger"
	"github.com/zfogg/citysearch/internal/metrics"
	"go.uber.org/zap"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc picks the bucket for a request. Defaults to the client IP.
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig allows perMinute requests per client per minute
func DefaultRateLimitConfig(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		Limit:  perMinute,
		Window: time.Minute,
	}
}

// TokenBucket for rate limiting
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a full bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// Allow takes one token if available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RetryAfter returns seconds to wait before the next token
func (tb *TokenBucket) RetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens < 1 && tb.refillRate > 0 {
		return int((1-tb.tokens)/tb.refillRate) + 1
	}
	return 0
}

// full reports whether the bucket has refilled completely
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(now)
	return tb.tokens >= tb.maxTokens
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	buckets map[string]*TokenBucket
	config  RateLimitConfig
	mu      sync.Mutex
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter creates a limiter and starts its idle-bucket sweeper
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	rl := &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
		stop:    make(chan struct{}),
	}
	go rl.cleanupRoutine(time.Minute)
	return rl
}

// Middleware rejects requests over the limit with 429. A non-positive
// limit or window lets every request through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	if rl.config.Limit <= 0 || rl.config.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	m := metrics.Get()
	return func(c *gin.Context) {
		key := rl.config.KeyFunc(c)
		bucket := rl.bucket(key)
		if !bucket.Allow() {
			retryAfter := bucket.RetryAfter()
			m.RateLimitExceededTotal.WithLabelValues(routeLabel(c)).Inc()
			logger.Log.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			apiErr := errors.RateLimited("").WithDetails(fmt.Sprintf("retry after %ds", retryAfter))
			c.AbortWithStatusJSON(apiErr.Status, apiErr)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) bucket(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[key]
	if !ok {
		refillRate := float64(rl.config.Limit) / rl.config.Window.Seconds()
		bucket = NewTokenBucket(float64(rl.config.Limit), refillRate)
		rl.buckets[key] = bucket
	}
	return bucket
}

// Stop ends the sweeper
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupRoutine(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

// sweep drops buckets that have fully refilled; they are recreated on demand
func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if b.full(now) {
			delete(rl.buckets, key)
		}
	}
}
