// Package postgres 提供 PostgreSQL Repository 实现
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

// ProfileRepository 用户档案仓储实现
type ProfileRepository struct {
	client *Client
}

// NewProfileRepository 创建用户档案仓储
func NewProfileRepository(client *Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

// Create 创建档案
func (r *ProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	ctx, span := tracer.Start(ctx, "postgres.ProfileRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateKey
		}
		span.RecordError(err)
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取档案
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProfileRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var profile entity.Profile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// GetByExternalID 根据外部身份 ID 获取档案
func (r *ProfileRepository) GetByExternalID(ctx context.Context, externalID string) (*entity.Profile, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProfileRepository.GetByExternalID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var profile entity.Profile
	if err := db.First(&profile, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get profile by external id: %w", err)
	}
	return &profile, nil
}

// Update 更新档案
func (r *ProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	ctx, span := tracer.Start(ctx, "postgres.ProfileRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	profile.UpdatedAt = time.Now()
	if err := db.Save(profile).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// Delete 删除档案
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProfileRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Profile{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// SetOnboardingCompleted 标记引导流程完成
func (r *ProfileRepository) SetOnboardingCompleted(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProfileRepository.SetOnboardingCompleted")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Profile{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"onboarding_completed": true,
			"updated_at":           time.Now(),
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark onboarding completed: %w", err)
	}
	return nil
}
