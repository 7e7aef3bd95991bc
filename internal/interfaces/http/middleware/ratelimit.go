package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/config"
	redisinfra "inkpress-ai-api/internal/infrastructure/persistence/redis"
	"inkpress-ai-api/internal/interfaces/http/dto"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
)

// RateLimiter 限流器接口
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 请求限流中间件，按认证档案维度限流，未认证请求退回客户端 IP
// 限流器自身故障时放行，不因 Redis 不可用拒绝请求
func RateLimit(limiter RateLimiter, cfg *config.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		subject := c.GetString(ContextKeyProfileID)
		if subject == "" {
			subject = c.ClientIP()
		}
		key := redisinfra.BuildProfileRateLimitKey(subject, c.FullPath())

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg.RequestsPerMinute, time.Minute)
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: dto.ErrorBody{
					Code:    string(apperrors.CodeTooManyRequests),
					Message: "too many requests",
				},
				TraceID: c.GetString("trace_id"),
			})
			return
		}

		c.Next()
	}
}
