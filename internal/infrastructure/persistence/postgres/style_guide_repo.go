// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"inkpress-ai-api/internal/domain/entity"
)

// StyleGuideRepository 风格指南仓储实现
type StyleGuideRepository struct {
	client *Client
}

// NewStyleGuideRepository 创建风格指南仓储
func NewStyleGuideRepository(client *Client) *StyleGuideRepository {
	return &StyleGuideRepository{client: client}
}

// Create 创建风格指南
func (r *StyleGuideRepository) Create(ctx context.Context, guide *entity.StyleGuide) error {
	ctx, span := tracer.Start(ctx, "postgres.StyleGuideRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if guide.IsDefault {
		// 新默认要先清除旧默认
		if err := db.Model(&entity.StyleGuide{}).
			Where("profile_id = ? AND is_default = true", guide.ProfileID).
			Update("is_default", false).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to clear default style guide: %w", err)
		}
	}
	if err := db.Create(guide).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create style guide: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取风格指南（限定档案）
func (r *StyleGuideRepository) GetByID(ctx context.Context, profileID, id string) (*entity.StyleGuide, error) {
	ctx, span := tracer.Start(ctx, "postgres.StyleGuideRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var guide entity.StyleGuide
	if err := db.First(&guide, "id = ? AND profile_id = ?", id, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get style guide: %w", err)
	}
	return &guide, nil
}

// GetDefault 获取档案的默认风格指南
func (r *StyleGuideRepository) GetDefault(ctx context.Context, profileID string) (*entity.StyleGuide, error) {
	ctx, span := tracer.Start(ctx, "postgres.StyleGuideRepository.GetDefault")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var guide entity.StyleGuide
	if err := db.First(&guide, "profile_id = ? AND is_default = true", profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get default style guide: %w", err)
	}
	return &guide, nil
}

// ListByProfile 列出档案的全部风格指南
func (r *StyleGuideRepository) ListByProfile(ctx context.Context, profileID string) ([]*entity.StyleGuide, error) {
	ctx, span := tracer.Start(ctx, "postgres.StyleGuideRepository.ListByProfile")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var guides []*entity.StyleGuide
	if err := db.Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&guides).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list style guides: %w", err)
	}
	return guides, nil
}

// Update 更新风格指南
func (r *StyleGuideRepository) Update(ctx context.Context, guide *entity.StyleGuide) error {
	ctx, span := tracer.Start(ctx, "postgres.StyleGuideRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	guide.UpdatedAt = time.Now()
	if err := db.Save(guide).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update style guide: %w", err)
	}
	return nil
}

// SetDefault 将指定风格指南设为默认，并清除档案下其余默认标记
func (r *StyleGuideRepository) SetDefault(ctx context.Context, profileID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.StyleGuideRepository.SetDefault")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.StyleGuide{}).
		Where("profile_id = ? AND id <> ?", profileID, id).
		Update("is_default", false).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear default style guide: %w", err)
	}
	result := db.Model(&entity.StyleGuide{}).
		Where("profile_id = ? AND id = ?", profileID, id).
		Update("is_default", true)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to set default style guide: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除风格指南（限定档案）
func (r *StyleGuideRepository) Delete(ctx context.Context, profileID, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.StyleGuideRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Delete(&entity.StyleGuide{}, "id = ? AND profile_id = ?", id, profileID)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to delete style guide: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
