// Package handler 实现 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/interfaces/http/middleware"
)

// profileID 获取认证中间件解析出的档案 ID
func profileID(c *gin.Context) string {
	return c.GetString(middleware.ContextKeyProfileID)
}
