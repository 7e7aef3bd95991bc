package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/generation"
	"inkpress-ai-api/internal/application/organization"
	"inkpress-ai-api/internal/interfaces/http/dto"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
)

// GenerationHandler 文章生成处理器
type GenerationHandler struct {
	generator     *generation.Service
	organizations *organization.Service
}

// NewGenerationHandler 创建生成处理器
func NewGenerationHandler(generator *generation.Service, organizations *organization.Service) *GenerationHandler {
	return &GenerationHandler{
		generator:     generator,
		organizations: organizations,
	}
}

// Generate 非流式生成：等待整个生成完成后一次性返回
// POST /api/articles/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req dto.GenerateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "topic is required")
		return
	}

	org, err := h.organizations.ResolveDefault(c.Request.Context(), profileID(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), profileID(c), org.ID, &generation.Request{
		Topic:                  req.Topic,
		StyleGuideID:           req.StyleGuideID,
		Keywords:               req.Keywords,
		AdditionalInstructions: req.AdditionalInstructions,
	})
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, result)
}

// GenerateStream 流式生成：以 SSE 逐步推送生成事件
// POST /api/articles/generate/stream
func (h *GenerationHandler) GenerateStream(c *gin.Context) {
	var req dto.GenerateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "topic is required")
		return
	}

	org, err := h.organizations.ResolveDefault(c.Request.Context(), profileID(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flush := func(event *generation.Event) {
		c.SSEvent(string(event.Step), event)
		c.Writer.Flush()
	}

	err = h.generator.Stream(c.Request.Context(), profileID(c), org.ID, &generation.Request{
		Topic:                  req.Topic,
		StyleGuideID:           req.StyleGuideID,
		Keywords:               req.Keywords,
		AdditionalInstructions: req.AdditionalInstructions,
	}, flush)
	if err != nil {
		// 头已发出，错误只能作为终止事件下发
		logger.Warn(c.Request.Context(), "streaming generation failed", "error", err)
		flush(&generation.Event{
			Step:    generation.StepError,
			Message: errorMessage(err),
		})
	}
}

func errorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "article generation failed"
}
