package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estatebot/internal/pkg/ratelimit"
	"estatebot/internal/pkg/response"
)

// RateLimit limits an authenticated user's calls to one action. A nil
// limiter disables the check; limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, action string, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%d", action, c.GetInt64(ctxUserID))
		res, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("rate limiter unavailable")
			c.Next()
			return
		}

		c.Writer.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		if !res.Allowed {
			secs := int(math.Ceil(res.RetryAfter.Seconds()))
			c.Writer.Header().Set("Retry-After", strconv.Itoa(secs))
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
