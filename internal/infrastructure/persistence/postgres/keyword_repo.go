package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
)

// KeywordRepository 关键词仓储实现
type KeywordRepository struct {
	client *Client
}

// NewKeywordRepository 创建关键词仓储
func NewKeywordRepository(client *Client) *KeywordRepository {
	return &KeywordRepository{client: client}
}

// Upsert 按归一化文本去重写入，已存在时返回现有记录
func (r *KeywordRepository) Upsert(ctx context.Context, keyword *entity.Keyword) (*entity.Keyword, error) {
	ctx, span := tracer.Start(ctx, "postgres.KeywordRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "normalized_text"}},
		DoNothing: true,
	}).Create(keyword).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to upsert keyword: %w", err)
	}

	var stored entity.Keyword
	if err := db.First(&stored, "normalized_text = ?", keyword.NormalizedText).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get keyword: %w", err)
	}
	return &stored, nil
}

// UpsertBatch 批量去重写入
func (r *KeywordRepository) UpsertBatch(ctx context.Context, keywords []*entity.Keyword) ([]*entity.Keyword, error) {
	ctx, span := tracer.Start(ctx, "postgres.KeywordRepository.UpsertBatch")
	defer span.End()

	if len(keywords) == 0 {
		return nil, nil
	}
	db := getDB(ctx, r.client.db)
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "normalized_text"}},
		DoNothing: true,
	}).Create(&keywords).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to upsert keywords: %w", err)
	}

	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		normalized = append(normalized, k.NormalizedText)
	}
	var stored []*entity.Keyword
	if err := db.Where("normalized_text IN ?", normalized).Find(&stored).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list upserted keywords: %w", err)
	}
	return stored, nil
}

// GetByNormalized 根据归一化文本获取关键词
func (r *KeywordRepository) GetByNormalized(ctx context.Context, normalized string) (*entity.Keyword, error) {
	ctx, span := tracer.Start(ctx, "postgres.KeywordRepository.GetByNormalized")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var keyword entity.Keyword
	if err := db.First(&keyword, "normalized_text = ?", normalized).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get keyword: %w", err)
	}
	return &keyword, nil
}

// List 分页列出关键词
func (r *KeywordRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Keyword], error) {
	ctx, span := tracer.Start(ctx, "postgres.KeywordRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Keyword{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count keywords: %w", err)
	}

	var keywords []*entity.Keyword
	if err := query.
		Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&keywords).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}

	return &repository.PagedResult[*entity.Keyword]{
		Items:  keywords,
		Total:  total,
		Offset: pagination.Offset,
		Limit:  pagination.Limit,
	}, nil
}

// UpdateSearchVolume 写入搜索量
func (r *KeywordRepository) UpdateSearchVolume(ctx context.Context, id string, volume int64) error {
	ctx, span := tracer.Start(ctx, "postgres.KeywordRepository.UpdateSearchVolume")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Keyword{}).
		Where("id = ?", id).
		Update("search_volume", volume)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update search volume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
