package handler

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/article"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	"inkpress-ai-api/internal/interfaces/http/dto"
)

// ArticleHandler 文章处理器
type ArticleHandler struct {
	articles *article.Service
}

// NewArticleHandler 创建文章处理器
func NewArticleHandler(articles *article.Service) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// List 列出当前档案的文章
// GET /api/articles
func (h *ArticleHandler) List(c *gin.Context) {
	var q dto.ArticleListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		dto.FailValidation(c, "invalid query parameters")
		return
	}

	query := &article.ListQuery{
		Status:     entity.ArticleStatus(q.Status),
		Sort:       repository.NewSort(q.SortBy, q.SortOrder),
		Pagination: q.Pagination(),
	}

	result, err := h.articles.List(c.Request.Context(), profileID(c), query)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Paged(c, "articles", result)
}

// Create 手动创建草稿
// POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req dto.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "title is required")
		return
	}

	in := &article.DraftInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Keywords:        req.Keywords,
		Description:     req.Description,
		Content:         req.Content,
		StyleGuideID:    req.StyleGuideID,
		Tone:            entity.Tone(req.Tone),
		ContentLength:   entity.ContentLength(req.ContentLength),
		ReadingLevel:    entity.ReadingLevel(req.ReadingLevel),
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}

	created, err := h.articles.CreateDraft(c.Request.Context(), profileID(c), in)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, created)
}

// Get 按 ID 获取文章
// GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	found, err := h.articles.Get(c.Request.Context(), profileID(c), c.Param("id"))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, found)
}

// Update 部分更新文章
// PATCH /api/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	var req dto.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "invalid request body")
		return
	}

	in := &article.UpdateInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Keywords:        req.Keywords,
		Description:     req.Description,
		Content:         req.Content,
		StyleGuideID:    req.StyleGuideID,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
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
	if req.Status != nil {
		status := entity.ArticleStatus(*req.Status)
		in.Status = &status
	}

	updated, err := h.articles.Update(c.Request.Context(), profileID(c), c.Param("id"), in)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, updated)
}

// Delete 删除文章
// DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.articles.Delete(c.Request.Context(), profileID(c), c.Param("id")); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}
