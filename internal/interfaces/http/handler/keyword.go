package handler

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/keyword"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/interfaces/http/dto"
)

// KeywordHandler 关键词处理器
type KeywordHandler struct {
	keywords *keyword.Service
}

// NewKeywordHandler 创建关键词处理器
func NewKeywordHandler(keywords *keyword.Service) *KeywordHandler {
	return &KeywordHandler{keywords: keywords}
}

// Add 添加单个关键词
// POST /api/keywords
func (h *KeywordHandler) Add(c *gin.Context) {
	var req dto.AddKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "text is required")
		return
	}

	created, err := h.keywords.Add(c.Request.Context(), req.Text, entity.KeywordSourceManual)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, created)
}

// AddBulk 批量添加关键词
// POST /api/keywords/bulk
func (h *KeywordHandler) AddBulk(c *gin.Context) {
	var req dto.AddKeywordsBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "texts must be a non-empty array")
		return
	}

	created, err := h.keywords.AddBulk(c.Request.Context(), req.Texts, entity.KeywordSourceManual)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, gin.H{"keywords": created})
}

// List 分页列出关键词
// GET /api/keywords
func (h *KeywordHandler) List(c *gin.Context) {
	result, err := h.keywords.List(c.Request.Context(), dto.BindPagination(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Paged(c, "keywords", result)
}

// Suggest 围绕主题生成关键词建议
// POST /api/keywords/suggestions
func (h *KeywordHandler) Suggest(c *gin.Context) {
	var req dto.KeywordSuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "topic is required")
		return
	}

	suggestions, err := h.keywords.Suggest(c.Request.Context(), req.Topic, req.Count)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, gin.H{"keywords": suggestions})
}

// LongTails 围绕种子关键词生成长尾变体
// POST /api/keywords/long-tails
func (h *KeywordHandler) LongTails(c *gin.Context) {
	var req dto.KeywordLongTailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "seed is required")
		return
	}

	longTails, err := h.keywords.LongTails(c.Request.Context(), req.Seed, req.Count)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, gin.H{"keywords": longTails})
}
