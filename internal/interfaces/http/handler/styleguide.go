package handler

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/styleguide"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/interfaces/http/dto"
	apperrors "inkpress-ai-api/pkg/errors"
)

// StyleGuideHandler 风格指南处理器
type StyleGuideHandler struct {
	guides *styleguide.Service
}

// NewStyleGuideHandler 创建风格指南处理器
func NewStyleGuideHandler(guides *styleguide.Service) *StyleGuideHandler {
	return &StyleGuideHandler{guides: guides}
}

// Create 创建风格指南
// POST /api/style-guides
func (h *StyleGuideHandler) Create(c *gin.Context) {
	var req dto.CreateStyleGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "name is required")
		return
	}

	in := &styleguide.CreateInput{
		Name:           req.Name,
		Description:    req.Description,
		Personality:    req.Personality,
		Formality:      req.Formality,
		TargetAudience: req.TargetAudience,
		PainPoints:     req.PainPoints,
		Language:       entity.Language(req.Language),
		Tone:           entity.Tone(req.Tone),
		ContentLength:  entity.ContentLength(req.ContentLength),
		ReadingLevel:   entity.ReadingLevel(req.ReadingLevel),
		Notes:          req.Notes,
		IsDefault:      req.IsDefault,
	}

	created, err := h.guides.Create(c.Request.Context(), profileID(c), in)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, created)
}

// ListByProfile 列出某个档案的风格指南，仅允许访问自己的
// GET /api/style-guides/:userId
func (h *StyleGuideHandler) ListByProfile(c *gin.Context) {
	requested := c.Param("userId")
	if requested != profileID(c) {
		dto.Fail(c, apperrors.New(apperrors.CodePermissionDenied, "cannot access another profile's style guides"))
		return
	}

	guides, err := h.guides.List(c.Request.Context(), requested)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, gin.H{"style_guides": guides})
}

// Update 部分更新风格指南
// PATCH /api/style-guides/:id
func (h *StyleGuideHandler) Update(c *gin.Context) {
	var req dto.UpdateStyleGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "invalid request body")
		return
	}

	in := &styleguide.UpdateInput{
		Name:           req.Name,
		Description:    req.Description,
		Personality:    req.Personality,
		Formality:      req.Formality,
		TargetAudience: req.TargetAudience,
		PainPoints:     req.PainPoints,
		Notes:          req.Notes,
		IsDefault:      req.IsDefault,
	}
	if req.Language != nil {
		lang := entity.Language(*req.Language)
		in.Language = &lang
	}
	if req.Tone != nil {
		tone := entity.Tone(*req.Tone)
		in.Tone = &tone
	}
	if req.ContentLength != nil {
		length := entity.ContentLength(*req.ContentLength)
		in.ContentLength = &length
	}
	if req.ReadingLevel != nil {
		level := entity.ReadingLevel(*req.ReadingLevel)
		in.ReadingLevel = &level
	}

	updated, err := h.guides.Update(c.Request.Context(), profileID(c), c.Param("id"), in)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, updated)
}

// Delete 删除风格指南
// DELETE /api/style-guides/:id
func (h *StyleGuideHandler) Delete(c *gin.Context) {
	if err := h.guides.Delete(c.Request.Context(), profileID(c), c.Param("id")); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}
