package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
	"github.com/noah-isme/eufiscalizo-api/pkg/response"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// Limiter decides whether another attempt identified by key fits in the window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

// RedisLimiter is a fixed-window counter stored in Redis. It fails open.
type RedisLimiter struct {
	client *redis.Client
	script *redis.Script
	logger *zap.Logger
}

// NewRedisLimiter returns nil when client is nil so callers can skip limiting.
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{client: client, script: redis.NewScript(rateLimitScript), logger: logger}
}

// Allow increments the counter for key and reports whether it is still within limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
		return true
	}
	return allowed == 1
}

// LoginRateLimit throttles sign-in attempts per client IP.
func LoginRateLimit(limiter Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := "eufiscalizo:login:" + c.ClientIP()
		if !limiter.Allow(c.Request.Context(), key, limit, window) {
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, "too many sign-in attempts, try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
