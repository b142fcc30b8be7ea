package interceptors

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/log/level"
	"github.com/go-redis/redis_rate/v10"
	apiutil "github.com/zynexa/go-zynexa-server/api/util"
	"github.com/zynexa/go-zynexa-server/global"
)

const (
	LimitRequestsPerSecond = 10
	// login, publish, feature verification and message sending submit transactions or create sessions
	LimitMutationsPerSecond = 2
)

// RateLimitMiddleware limits requests per client fingerprint. bucket separates limits of different route groups.
// Without a configured limiter (no redis) requests pass through.
func RateLimitMiddleware(bucket string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if global.RateLimiter == nil {
			c.Next()
			return
		}
		ip, ipErr := apiutil.GetIPFromContext(c)
		if ipErr != nil || ip == nil {
			unkn := "unknown"
			ip = &unkn
		}
		userAgent := c.GetHeader("User-Agent")
		acceptLanguage := c.GetHeader("Accept-Language")
		all := fmt.Sprintf("%s%s%s_%s", *ip, userAgent, acceptLanguage, bucket)

		hash := xxhash.Sum64String(all)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		result, err := global.RateLimiter.Allow(ctx, strconv.FormatUint(hash, 10), redis_rate.PerSecond(limit))
		if err != nil {
			level.Error(global.Logger).Log("msg", "rate limit check failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "code": "internal_error", "error": "failed to perform rate limit check"})
			return
		}
		c.Writer.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit.Rate))
		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Writer.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(result.ResetAfter.Milliseconds())))
		if result.Allowed <= 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": http.StatusTooManyRequests, "code": "rate_limited", "error": "too many requests"})
			return
		}
		c.Next()
	}
}
