package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"crmventas/internal/apierror"

	"github.com/gin-gonic/gin"
	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Limiter ───────────────────────────────────────────────────────────────────

// Limiter counts requests per key in Redis (GCRA) so every replica shares the
// same budget. While Redis is unreachable it falls back to a per-process
// token bucket.
type Limiter struct {
	redis    *redis_rate.Limiter
	fallback *localLimiter
}

// NewLimiter builds a Limiter. rdb may be nil, in which case only the local
// bucket is used.
func NewLimiter(rdb *redis.Client) *Limiter {
	l := &Limiter{fallback: newLocalLimiter()}
	if rdb != nil {
		l.redis = redis_rate.NewLimiter(rdb)
	}
	return l
}

func (l *Limiter) allow(ctx context.Context, key string, limit redis_rate.Limit) *redis_rate.Result {
	if l.redis != nil {
		res, err := l.redis.Allow(ctx, key, limit)
		if err == nil {
			return res
		}
		log.Warn().Err(err).Str("key", key).Msg("rate limiter: redis unavailable, using local bucket")
	}
	return l.fallback.allow(key, limit)
}

// PerMinute allows n requests per minute with a burst of n.
func PerMinute(n int) redis_rate.Limit {
	if n < 1 {
		n = 1
	}
	return redis_rate.Limit{Rate: n, Burst: n, Period: time.Minute}
}

// ── Login rate limiter ────────────────────────────────────────────────────────

// LoginRateLimiter limits login attempts per IP.
func (l *Limiter) LoginRateLimiter(perMinute int) gin.HandlerFunc {
	return l.handler("ratelimit:login:", PerMinute(perMinute), "Demasiados intentos de login. Intente en 1 minuto.")
}

// ── General API rate limiter ──────────────────────────────────────────────────

// RateLimiter returns the general per-IP limiter.
func (l *Limiter) RateLimiter(perMinute int) gin.HandlerFunc {
	return l.handler("ratelimit:api:", PerMinute(perMinute), "Demasiadas solicitudes. Intente nuevamente en un momento.")
}

func (l *Limiter) handler(prefix string, limit redis_rate.Limit, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := l.allow(c.Request.Context(), prefix+c.ClientIP(), limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed == 0 {
			retry := int(res.RetryAfter.Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// ── Local fallback ────────────────────────────────────────────────────────────

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type localLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	lastGC  time.Time
}

const bucketTTL = 10 * time.Minute

func newLocalLimiter() *localLimiter {
	return &localLimiter{buckets: make(map[string]*bucket), lastGC: time.Now()}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSec := float64(limit.Rate) / limit.Period.Seconds()
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Expired buckets are purged inline, at most once per TTL.
	if now.Sub(l.lastGC) > bucketTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastAccess) > bucketTTL {
				delete(l.buckets, k)
			}
		}
		l.lastGC = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastAccess = now

	res := &redis_rate.Result{Limit: limit, RetryAfter: -1}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = time.Duration(float64(time.Second) / perSec)
	}
	if rem := int(b.limiter.TokensAt(now)); rem > 0 {
		res.Remaining = rem
	}
	return res
}
