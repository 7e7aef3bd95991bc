// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"inkpress-ai-api/internal/domain/entity"
)

// QuotaRepository 生成配额仓储接口
type QuotaRepository interface {
	// Create 创建配额记录；组织冲突时返回 ErrDuplicateKey
	Create(ctx context.Context, quota *entity.GenerationQuota) error

	// GetByOrganization 根据组织 ID 获取配额记录
	GetByOrganization(ctx context.Context, orgID string) (*entity.GenerationQuota, error)

	// IncrementCount 条件自增计数器：
	// UPDATE ... SET generation_count = observed+1 WHERE organization_id = ? AND generation_count = observed
	// 返回是否有行被更新；零行表示计数器已被并发推进
	IncrementCount(ctx context.Context, orgID string, observed int) (bool, error)

	// Reset 清零计数并刷新账期
	Reset(ctx context.Context, orgID string, periodStart, periodEnd time.Time) error

	// SetTier 切换层级并覆盖上限/计数（降级路径使用）
	SetTier(ctx context.Context, orgID string, tier entity.Tier, limit, count int) error
}
