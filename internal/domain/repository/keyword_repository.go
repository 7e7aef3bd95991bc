// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"inkpress-ai-api/internal/domain/entity"
)

// KeywordRepository 关键词仓储接口
type KeywordRepository interface {
	// Upsert 按归一化文本去重写入，已存在时返回现有记录
	Upsert(ctx context.Context, keyword *entity.Keyword) (*entity.Keyword, error)

	// UpsertBatch 批量去重写入
	UpsertBatch(ctx context.Context, keywords []*entity.Keyword) ([]*entity.Keyword, error)

	// GetByNormalized 根据归一化文本获取关键词
	GetByNormalized(ctx context.Context, normalized string) (*entity.Keyword, error)

	// List 分页列出关键词
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Keyword], error)

	// UpdateSearchVolume 写入搜索量
	UpdateSearchVolume(ctx context.Context, id string, volume int64) error
}
