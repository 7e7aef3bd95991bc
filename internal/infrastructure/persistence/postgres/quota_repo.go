package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
)

// QuotaRepository 生成配额仓储实现
type QuotaRepository struct {
	client *Client
}

// NewQuotaRepository 创建生成配额仓储
func NewQuotaRepository(client *Client) *QuotaRepository {
	return &QuotaRepository{client: client}
}

// Create 创建配额记录
func (r *QuotaRepository) Create(ctx context.Context, quota *entity.GenerationQuota) error {
	ctx, span := tracer.Start(ctx, "postgres.QuotaRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(quota).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateKey
		}
		span.RecordError(err)
		return fmt.Errorf("failed to create quota: %w", err)
	}
	return nil
}

// GetByOrganization 按组织获取配额记录
func (r *QuotaRepository) GetByOrganization(ctx context.Context, organizationID string) (*entity.GenerationQuota, error) {
	ctx, span := tracer.Start(ctx, "postgres.QuotaRepository.GetByOrganization")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var quota entity.GenerationQuota
	if err := db.First(&quota, "organization_id = ?", organizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}
	return &quota, nil
}

// IncrementCount 按观测值做条件自增（CAS）
// 只有当前计数仍等于 observed 时才会写入，返回是否写入成功
func (r *QuotaRepository) IncrementCount(ctx context.Context, organizationID string, observed int) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.QuotaRepository.IncrementCount")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.GenerationQuota{}).
		Where("organization_id = ? AND generation_count = ?", organizationID, observed).
		Updates(map[string]interface{}{
			"generation_count": observed + 1,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		span.RecordError(result.Error)
		return false, fmt.Errorf("failed to increment quota count: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Reset 重置计数并进入新计费周期
func (r *QuotaRepository) Reset(ctx context.Context, organizationID string, periodStart, periodEnd time.Time) error {
	ctx, span := tracer.Start(ctx, "postgres.QuotaRepository.Reset")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.GenerationQuota{}).
		Where("organization_id = ?", organizationID).
		Updates(map[string]interface{}{
			"generation_count": 0,
			"period_start":     periodStart,
			"period_end":       periodEnd,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to reset quota: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetTier 切换套餐档位并同步缓存的月限额与计数
func (r *QuotaRepository) SetTier(ctx context.Context, organizationID string, tier entity.Tier, monthlyLimit, count int) error {
	ctx, span := tracer.Start(ctx, "postgres.QuotaRepository.SetTier")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.GenerationQuota{}).
		Where("organization_id = ?", organizationID).
		Updates(map[string]interface{}{
			"tier":             tier,
			"monthly_limit":    monthlyLimit,
			"generation_count": count,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to set quota tier: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
