package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	PaymentMaxRequests = 10 // per user per minute
	SearchMaxRequests  = 60 // per IP per minute
	RateWindow         = time.Minute
)

// KeyFunc picks the identity a limit is counted against. An empty key skips
// the limit.
type KeyFunc func(c *gin.Context) string

func ByIP(c *gin.Context) string {
	return c.ClientIP()
}

func ByUser(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// RateLimit is a fixed window counter kept in Redis so the limit holds across
// instances. When Redis is unreachable requests are let through.
func RateLimit(client redis.Cmdable, name string, max int64, window time.Duration, key KeyFunc, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := key(c)
		if id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := fmt.Sprintf("ratelimit:%s:%s", name, id)

		count, err := client.Incr(ctx, redisKey).Result()
		if err != nil {
			logger.Warn().Err(err).Str("limit", name).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, redisKey, window)
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		if count > max {
			ttl, _ := client.TTL(ctx, redisKey).Result()
			if ttl < 0 {
				ttl = window
			}
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			abort(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max-count, 10))

		c.Next()
	}
}
