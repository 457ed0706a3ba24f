package webserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether a client may trigger another pipeline run. Every
// run costs up to a dozen upstream API calls.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Describe() string
}

// RateLimiter is an in-process sliding window limiter.
type RateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	valid := rl.requests[key]
	if len(valid) >= rl.rate {
		return false, nil
	}
	rl.requests[key] = append(valid, now)
	return true, nil
}

func (rl *RateLimiter) Describe() string {
	return fmt.Sprintf("%d requests per %v", rl.rate, rl.window)
}

// cleanup drops timestamps outside the window. Caller holds mu.
func (rl *RateLimiter) cleanup(now time.Time) {
	for key, times := range rl.requests {
		validTimes := times[:0]
		for _, t := range times {
			if now.Sub(t) < rl.window {
				validTimes = append(validTimes, t)
			}
		}
		if len(validTimes) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = validTimes
		}
	}
}

// RedisRateLimiter is a fixed window limiter shared by every instance
// pointing at the same redis.
type RedisRateLimiter struct {
	rdb    *redis.Client
	rate   int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisRateLimiter(rdb *redis.Client, rate int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		rate:   rate,
		window: window,
		prefix: "castlotto:ratelimit:",
		now:    time.Now,
	}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := rl.now().UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s%s:%d", rl.prefix, key, bucket)

	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.rate), nil
}

func (rl *RedisRateLimiter) Describe() string {
	return fmt.Sprintf("%d requests per %v", rl.rate, rl.window)
}

// RateLimitMiddleware rejects clients over the limit. Limiter backend errors
// let the request through.
func RateLimitMiddleware(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded: " + limiter.Describe(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
