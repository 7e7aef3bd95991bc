// Package article 提供文章的创建、部分更新、发布与检索
package article

import (
	"context"
	"time"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/utils"
)

// DraftInput 手动保存草稿入参
type DraftInput struct {
	Title           string
	Slug            string
	Keywords        []string
	Description     string
	Content         string
	StyleGuideID    *string
	Tone            entity.Tone
	ContentLength   entity.ContentLength
	ReadingLevel    entity.ReadingLevel
	MetaTitle       string
	MetaDescription string
}

// UpdateInput 部分更新入参，nil 字段不变
type UpdateInput struct {
	Title           *string
	Slug            *string
	Keywords        *[]string
	Description     *string
	Content         *string
	StyleGuideID    *string
	Tone            *entity.Tone
	ContentLength   *entity.ContentLength
	ReadingLevel    *entity.ReadingLevel
	MetaTitle       *string
	MetaDescription *string
	Status          *entity.ArticleStatus
}

// ListQuery 列表查询参数
type ListQuery struct {
	Status     entity.ArticleStatus
	Sort       repository.Sort
	Pagination repository.Pagination
}

// Service 文章服务
// 所有操作以档案 ID 作为租户边界
type Service struct {
	articleRepo repository.ArticleRepository
	now         func() time.Time
}

// NewService 创建文章服务
func NewService(articleRepo repository.ArticleRepository) *Service {
	return &Service{
		articleRepo: articleRepo,
		now:         time.Now,
	}
}

// CreateDraft 手动创建草稿
func (s *Service) CreateDraft(ctx context.Context, profileID string, in *DraftInput) (*entity.Article, error) {
	slug := in.Slug
	if slug == "" {
		slug = utils.Slugify(in.Title)
	}

	a := entity.NewArticle(profileID, in.Title, slug)
	a.Keywords = in.Keywords
	a.Description = in.Description
	a.Content = in.Content
	a.StyleGuideID = in.StyleGuideID
	a.Tone = in.Tone
	a.ContentLength = in.ContentLength
	a.ReadingLevel = in.ReadingLevel
	a.MetaTitle = in.MetaTitle
	a.MetaDescription = in.MetaDescription

	if err := s.articleRepo.Create(ctx, a); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create article")
	}
	return a, nil
}

// Get 按 ID 获取文章
func (s *Service) Get(ctx context.Context, profileID, id string) (*entity.Article, error) {
	a, err := s.articleRepo.GetByID(ctx, profileID, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get article")
	}
	if a == nil {
		return nil, apperrors.ErrArticleNotFound
	}
	return a, nil
}

// Update 部分更新文章，只有给定的字段会被写入
// 状态首次切到 published 时写入发布时间；再次发布不重写
func (s *Service) Update(ctx context.Context, profileID, id string, in *UpdateInput) (*entity.Article, error) {
	current, err := s.Get(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	update := &repository.ArticleUpdate{
		Title:           in.Title,
		Slug:            in.Slug,
		Keywords:        in.Keywords,
		Description:     in.Description,
		Content:         in.Content,
		StyleGuideID:    in.StyleGuideID,
		Tone:            in.Tone,
		ContentLength:   in.ContentLength,
		ReadingLevel:    in.ReadingLevel,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		Status:          in.Status,
	}

	if in.Status != nil && *in.Status == entity.ArticleStatusPublished && current.PublishedAt == nil {
		publishedAt := s.now()
		update.PublishedAt = &publishedAt
	}

	if err := s.articleRepo.ApplyUpdate(ctx, profileID, id, update); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update article")
	}

	updated, err := s.articleRepo.GetByID(ctx, profileID, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to reload article")
	}
	if updated == nil {
		return nil, apperrors.ErrArticleNotFound
	}
	return updated, nil
}

// Delete 硬删除文章
func (s *Service) Delete(ctx context.Context, profileID, id string) error {
	if _, err := s.Get(ctx, profileID, id); err != nil {
		return err
	}
	if err := s.articleRepo.Delete(ctx, profileID, id); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete article")
	}
	return nil
}

// List 分页列出文章
func (s *Service) List(ctx context.Context, profileID string, q *ListQuery) (*repository.PagedResult[*entity.Article], error) {
	var filter *repository.ArticleFilter
	if q.Status != "" {
		filter = &repository.ArticleFilter{Status: q.Status}
	}
	result, err := s.articleRepo.List(ctx, profileID, filter, q.Sort, q.Pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list articles")
	}
	return result, nil
}
