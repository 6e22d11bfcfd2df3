package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// CounterStore counts hits per key within a fixed window. The Redis
// implementation shares counters across replicas; the memory one is the
// single-process fallback.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, retryAfter time.Duration, err error)
}

type RateLimiter struct {
	store  CounterStore
	window time.Duration
	limit  int
}

func NewRateLimiter(store CounterStore, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Middleware enforces the limit for a derived key.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		count, retryAfter, err := rl.store.Incr(c.Request.Context(), key, rl.window)

		if err != nil {
			// counting backend down: fail open rather than lock everyone out
			c.Next()
			return
		}

		if count > rl.limit {
			secs := int(retryAfter.Seconds())

			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})
			return
		}

		c.Next()
	}
}

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}

// MemoryCounterStore keeps per-key fixed windows in process memory.
type MemoryCounterStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{clients: make(map[string]*clientBucket)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]

	if !ok || now.After(b.windowEnd) {
		b = &clientBucket{windowEnd: now.Add(window)}
		s.clients[key] = b
	}

	b.count++

	return b.count, time.Until(b.windowEnd), nil
}

// RedisCounterStore uses INCR with an expiry set on the first hit of
// each window.
type RedisCounterStore struct {
	rdb *redis.Client
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	rkey := "ratelimit:" + key

	count, err := s.rdb.Incr(ctx, rkey).Result()

	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := s.rdb.Expire(ctx, rkey, window).Err(); err != nil {
			return 0, 0, err
		}
	}

	ttl, err := s.rdb.TTL(ctx, rkey).Result()

	if err != nil {
		ttl = window
	}

	return int(count), ttl, nil
}
