// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"inkpress-ai-api/internal/domain/entity"
)

// ProfileRepository 用户档案仓储接口
type ProfileRepository interface {
	// Create 创建档案；外部 ID 冲突时返回 ErrDuplicateKey
	Create(ctx context.Context, profile *entity.Profile) error

	// GetByID 根据 ID 获取档案
	GetByID(ctx context.Context, id string) (*entity.Profile, error)

	// GetByExternalID 根据外部身份 ID 获取档案
	GetByExternalID(ctx context.Context, externalID string) (*entity.Profile, error)

	// Update 更新档案
	Update(ctx context.Context, profile *entity.Profile) error

	// Delete 删除档案
	Delete(ctx context.Context, id string) error

	// SetOnboardingCompleted 标记引导流程完成
	SetOnboardingCompleted(ctx context.Context, id string) error
}
