package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/profile"
	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/interfaces/http/dto"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
)

const (
	headerWebhookSignature = "X-Webhook-Signature"
	headerWebhookTimestamp = "X-Webhook-Timestamp"
)

// WebhookHandler 身份平台 Webhook 处理器
// 签名为 HMAC-SHA256(secret, "<timestamp>.<body>")，带时间戳容忍窗口防重放
type WebhookHandler struct {
	profiles *profile.Resolver
	cfg      *config.IdentityConfig
	now      func() time.Time
}

// NewWebhookHandler 创建 Webhook 处理器
func NewWebhookHandler(profiles *profile.Resolver, cfg *config.IdentityConfig) *WebhookHandler {
	return &WebhookHandler{
		profiles: profiles,
		cfg:      cfg,
		now:      time.Now,
	}
}

// HandleIdentity 处理身份平台的用户事件
// POST /api/webhooks/identity
func (h *WebhookHandler) HandleIdentity(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		dto.FailValidation(c, "failed to read request body")
		return
	}

	if err := h.verifySignature(c, body); err != nil {
		logger.Warn(c.Request.Context(), "webhook signature verification failed", "error", err)
		dto.Fail(c, apperrors.New(apperrors.CodeUnauthorized, "invalid webhook signature"))
		return
	}

	var req dto.IdentityWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		dto.FailValidation(c, "malformed webhook payload")
		return
	}
	if req.Data.ExternalID == "" {
		dto.FailValidation(c, "external_id is required")
		return
	}

	switch req.Type {
	case "user.created", "user.updated":
		if _, err := h.profiles.EnsureWithClaims(c.Request.Context(), req.Data.ExternalID,
			req.Data.Email, req.Data.Name, req.Data.Image); err != nil {
			dto.Fail(c, err)
			return
		}
	case "user.deleted":
		if err := h.profiles.Remove(c.Request.Context(), req.Data.ExternalID); err != nil {
			dto.Fail(c, err)
			return
		}
	default:
		// 未知事件类型确认收到即可，避免身份平台反复重试
		logger.Info(c.Request.Context(), "ignoring unhandled webhook event", "type", req.Type)
	}

	dto.OK(c, gin.H{"received": true})
}

func (h *WebhookHandler) verifySignature(c *gin.Context, body []byte) error {
	if h.cfg.WebhookSecret == "" {
		// 未配置密钥时跳过校验（本地开发）
		return nil
	}

	signature := c.GetHeader(headerWebhookSignature)
	if signature == "" {
		return fmt.Errorf("missing %s header", headerWebhookSignature)
	}

	timestampRaw := c.GetHeader(headerWebhookTimestamp)
	timestamp, err := strconv.ParseInt(timestampRaw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s header", headerWebhookTimestamp)
	}

	tolerance := h.cfg.WebhookTolerance
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	issuedAt := time.Unix(timestamp, 0)
	if drift := h.now().Sub(issuedAt); drift > tolerance || drift < -tolerance {
		return fmt.Errorf("timestamp outside tolerance window")
	}

	mac := hmac.New(sha256.New, []byte(h.cfg.WebhookSecret))
	mac.Write([]byte(timestampRaw))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
