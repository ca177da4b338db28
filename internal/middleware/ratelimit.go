package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medihub/medihub-api/internal/utils"
)

// RateLimitConfig holds the login rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// tokenBucket implements a token bucket rate limiter.
type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *tokenBucket) retryAfter() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refillRate <= 0 {
		return 1
	}
	return int((1-b.tokens)/b.refillRate) + 1
}

func (b *tokenBucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.lastRefill)
}

// bucketIdleTTL is how long a client bucket may sit untouched before it
// is dropped, so the per-IP map does not grow without bound.
const bucketIdleTTL = 10 * time.Minute

// rateLimiterStore holds per-client token buckets.
type rateLimiterStore struct {
	buckets map[string]*tokenBucket
	mu      sync.RWMutex
	config  RateLimitConfig
}

func (s *rateLimiterStore) getBucket(key string) *tokenBucket {
	s.mu.RLock()
	bucket, ok := s.buckets[key]
	s.mu.RUnlock()
	if ok {
		return bucket
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.buckets[key]; ok {
		return bucket
	}
	s.evictIdle(time.Now())
	bucket = newTokenBucket(s.config.RequestsPerSecond, s.config.BurstSize)
	s.buckets[key] = bucket
	return bucket
}

// evictIdle drops buckets that have not been refilled for bucketIdleTTL.
// Callers must hold the write lock.
func (s *rateLimiterStore) evictIdle(now time.Time) {
	for key, bucket := range s.buckets {
		if bucket.idleSince(now) > bucketIdleTTL {
			delete(s.buckets, key)
		}
	}
}

// RateLimit limits requests per client IP. Intended for the login routes;
// an RPS of 0 disables it entirely.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	store := &rateLimiterStore{
		buckets: make(map[string]*tokenBucket),
		config:  cfg,
	}

	return func(c *gin.Context) {
		bucket := store.getBucket(c.ClientIP())
		if !bucket.allow() {
			c.Header("Retry-After", strconv.Itoa(bucket.retryAfter()))
			utils.AbortError(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
		c.Next()
	}
}
