package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/profile"
	"inkpress-ai-api/internal/interfaces/http/dto"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
	"inkpress-ai-api/pkg/utils"
)

const (
	// ContextKeyProfileID 上下文中的档案 ID 键
	ContextKeyProfileID = "profile_id"
	// ContextKeyExternalID 上下文中的外部用户 ID 键
	ContextKeyExternalID = "external_id"
)

// Auth 认证中间件：校验身份提供商会话令牌并解析为内部档案
// 首次见到的外部用户在此惰性建档
func Auth(verifier *utils.TokenVerifier, resolver *profile.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c)
		if err != nil {
			abortUnauthorized(c, apperrors.CodeTokenMissing, "missing or malformed authorization header")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				abortUnauthorized(c, apperrors.CodeTokenExpired, "token expired")
				return
			}
			abortUnauthorized(c, apperrors.CodeTokenInvalid, "token invalid")
			return
		}

		p, err := resolver.EnsureWithClaims(c.Request.Context(), claims.ExternalUserID(),
			optional(claims.Email), optional(claims.Name), optional(claims.Image))
		if err != nil {
			logger.Error(c.Request.Context(), "failed to resolve profile", err,
				"external_id", claims.ExternalUserID())
			dto.Fail(c, err)
			c.Abort()
			return
		}

		c.Set(ContextKeyProfileID, p.ID)
		c.Set(ContextKeyExternalID, p.ExternalID)

		ctx := logger.WithContext(c.Request.Context(), "profile_id", p.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", utils.ErrInvalidToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", utils.ErrInvalidToken
	}
	return parts[1], nil
}

func abortUnauthorized(c *gin.Context, code apperrors.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: dto.ErrorBody{
			Code:    string(code),
			Message: message,
		},
		TraceID: c.GetString("trace_id"),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
