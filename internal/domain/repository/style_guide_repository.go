// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"inkpress-ai-api/internal/domain/entity"
)

// StyleGuideRepository 风格指南仓储接口
type StyleGuideRepository interface {
	// Create 创建风格指南
	Create(ctx context.Context, guide *entity.StyleGuide) error

	// GetByID 根据 ID 获取风格指南（限定档案）
	GetByID(ctx context.Context, profileID, id string) (*entity.StyleGuide, error)

	// GetDefault 获取档案的默认风格指南
	GetDefault(ctx context.Context, profileID string) (*entity.StyleGuide, error)

	// ListByProfile 列出档案的全部风格指南
	ListByProfile(ctx context.Context, profileID string) ([]*entity.StyleGuide, error)

	// Update 更新风格指南
	Update(ctx context.Context, guide *entity.StyleGuide) error

	// SetDefault 将指定风格指南设为默认，并清除档案下其余默认标记
	SetDefault(ctx context.Context, profileID, id string) error

	// Delete 删除风格指南（限定档案）
	Delete(ctx context.Context, profileID, id string) error
}
