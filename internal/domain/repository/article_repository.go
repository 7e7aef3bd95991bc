// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"inkpress-ai-api/internal/domain/entity"
)

// ArticleFilter 文章过滤条件
type ArticleFilter struct {
	Status entity.ArticleStatus
}

// ArticleUpdate 文章部分更新：仅非 nil 字段会被写入
type ArticleUpdate struct {
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
	PublishedAt     *time.Time
}

// ArticleRepository 文章仓储接口
// 所有操作以档案 ID 作为租户边界谓词
type ArticleRepository interface {
	// Create 创建文章
	Create(ctx context.Context, article *entity.Article) error

	// GetByID 根据 ID 获取文章（限定档案）
	GetByID(ctx context.Context, profileID, id string) (*entity.Article, error)

	// ApplyUpdate 部分更新文章字段（限定档案）
	ApplyUpdate(ctx context.Context, profileID, id string, update *ArticleUpdate) error

	// Delete 删除文章（限定档案）
	Delete(ctx context.Context, profileID, id string) error

	// List 分页列出文章（限定档案），返回总数
	List(ctx context.Context, profileID string, filter *ArticleFilter, sort Sort, pagination Pagination) (*PagedResult[*entity.Article], error)
}
