package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sis-mentoria-api/internal/service"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/ratelimit"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

// RateLimit throttles by client IP. Backend failures let the request through.
func RateLimit(limiter ratelimit.Limiter, window time.Duration, metrics *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	minutes := int(window / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	limited := appErrors.Clone(appErrors.ErrRateLimited, fmt.Sprintf("Muitas tentativas. Tente novamente em %d minutos.", minutes))

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		decision, err := limiter.Allow(c.Request.Context(), c.ClientIP()+"|"+path)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
		}
		if decision.Allowed {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			c.Next()
			return
		}

		metrics.RecordRateLimited(path)
		c.Header("Retry-After", strconv.Itoa(decision.RetryAfterSeconds()))
		response.Abort(c, limited)
	}
}
