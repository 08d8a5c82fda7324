package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/devboard-api/internal/errors"
	"github.com/yukikurage/devboard-api/internal/metrics"
)

// Limiter takes one token for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit throttles requests per client IP and route. A nil limiter disables
// it. When the store is unreachable requests are let through.
func RateLimit(limiter Limiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		allowed, wait, err := limiter.Allow(c.Request.Context(), route+":"+c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Str("route", route).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimitedTotal.WithLabelValues(route).Inc()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.Error(apierrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
