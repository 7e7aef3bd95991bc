// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
)

// ArticleRepository 文章仓储实现
type ArticleRepository struct {
	client *Client
}

// NewArticleRepository 创建文章仓储
func NewArticleRepository(client *Client) *ArticleRepository {
	return &ArticleRepository{client: client}
}

// Create 创建文章
func (r *ArticleRepository) Create(ctx context.Context, article *entity.Article) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(article).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取文章（限定档案）
func (r *ArticleRepository) GetByID(ctx context.Context, profileID, id string) (*entity.Article, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var article entity.Article
	if err := db.First(&article, "id = ? AND profile_id = ?", id, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

// ApplyUpdate 部分更新文章字段（限定档案）
func (r *ArticleRepository) ApplyUpdate(ctx context.Context, profileID, id string, update *repository.ArticleUpdate) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.ApplyUpdate")
	defer span.End()

	values := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if update.Title != nil {
		values["title"] = *update.Title
	}
	if update.Slug != nil {
		values["slug"] = *update.Slug
	}
	if update.Keywords != nil {
		values["keywords"] = pq.StringArray(*update.Keywords)
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}
	if update.Content != nil {
		values["content"] = *update.Content
	}
	if update.StyleGuideID != nil {
		values["style_guide_id"] = *update.StyleGuideID
	}
	if update.Tone != nil {
		values["tone"] = *update.Tone
	}
	if update.ContentLength != nil {
		values["content_length"] = *update.ContentLength
	}
	if update.ReadingLevel != nil {
		values["reading_level"] = *update.ReadingLevel
	}
	if update.MetaTitle != nil {
		values["meta_title"] = *update.MetaTitle
	}
	if update.MetaDescription != nil {
		values["meta_description"] = *update.MetaDescription
	}
	if update.Status != nil {
		values["status"] = *update.Status
	}
	if update.PublishedAt != nil {
		values["published_at"] = *update.PublishedAt
	}

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Article{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Updates(values)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update article: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除文章（限定档案）
func (r *ArticleRepository) Delete(ctx context.Context, profileID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Delete(&entity.Article{}, "id = ? AND profile_id = ?", id, profileID)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to delete article: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// sortableColumns 允许排序的列白名单
var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
}

// List 分页列出文章（限定档案），返回总数
func (r *ArticleRepository) List(ctx context.Context, profileID string, filter *repository.ArticleFilter, sort repository.Sort, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Article{}).Where("profile_id = ?", profileID)

	if filter != nil && filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	// 排序列白名单，默认按创建时间倒序
	field := sort.Field
	if !sortableColumns[field] {
		field = "created_at"
	}
	order := "DESC"
	if sort.Order == repository.SortOrderAsc {
		order = "ASC"
	}

	var articles []*entity.Article
	if err := query.Order(field + " " + order).
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&articles).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return repository.NewPagedResult(articles, total, pagination), nil
}
