// Package profile 提供外部身份到内部档案的解析
package profile

import (
	"context"
	"errors"
	"fmt"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
)

// Resolver 把外部身份提供商的用户 ID 映射到内部档案
type Resolver struct {
	profileRepo repository.ProfileRepository
}

// NewResolver 创建档案解析器
func NewResolver(profileRepo repository.ProfileRepository) *Resolver {
	return &Resolver{profileRepo: profileRepo}
}

// Ensure 按外部 ID 解析档案，不存在则创建
// 幂等：并发首次访问可能竞争插入，唯一约束是唯一的正确性保障，
// 插入冲突后回读即可拿到赢家写入的行
func (r *Resolver) Ensure(ctx context.Context, externalID string) (*entity.Profile, error) {
	existing, err := r.profileRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	created := entity.NewProfile(externalID)
	if err := r.profileRepo.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			winner, getErr := r.profileRepo.GetByExternalID(ctx, externalID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to resolve profile after insert race: %w", getErr)
			}
			if winner == nil {
				return nil, fmt.Errorf("profile vanished after duplicate insert: %s", externalID)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return created, nil
}

// EnsureWithClaims 解析档案并在首建时落入身份声明里的邮箱/姓名/头像
func (r *Resolver) EnsureWithClaims(ctx context.Context, externalID string, email, name, image *string) (*entity.Profile, error) {
	existing, err := r.profileRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	created := entity.NewProfile(externalID)
	created.Email = email
	created.Name = name
	created.ImageURL = image
	if err := r.profileRepo.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			winner, getErr := r.profileRepo.GetByExternalID(ctx, externalID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to resolve profile after insert race: %w", getErr)
			}
			if winner == nil {
				return nil, fmt.Errorf("profile vanished after duplicate insert: %s", externalID)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return created, nil
}

// CompleteOnboarding 标记引导流程完成
func (r *Resolver) CompleteOnboarding(ctx context.Context, profileID string) error {
	if err := r.profileRepo.SetOnboardingCompleted(ctx, profileID); err != nil {
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

// Remove 删除档案（身份提供商 user.deleted Webhook 调用）
func (r *Resolver) Remove(ctx context.Context, externalID string) error {
	existing, err := r.profileRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return fmt.Errorf("failed to resolve profile: %w", err)
	}
	if existing == nil {
		return nil
	}
	if err := r.profileRepo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
