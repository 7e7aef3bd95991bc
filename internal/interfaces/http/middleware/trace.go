package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"inkpress-ai-api/pkg/logger"
	"inkpress-ai-api/pkg/tracer"
)

// Trace OpenTelemetry 链路追踪中间件
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 把 trace_id 注入 gin 上下文与日志上下文
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID := tracer.TraceID(c.Request.Context()); traceID != "" {
			c.Set("trace_id", traceID)

			ctx := logger.WithContext(c.Request.Context(), "trace_id", traceID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}
