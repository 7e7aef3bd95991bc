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

// OrganizationRepository 组织仓储实现
type OrganizationRepository struct {
	client *Client
}

// NewOrganizationRepository 创建组织仓储
func NewOrganizationRepository(client *Client) *OrganizationRepository {
	return &OrganizationRepository{client: client}
}

// Create 创建组织
func (r *OrganizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(org).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateKey
		}
		span.RecordError(err)
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取组织
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var org entity.Organization
	if err := db.First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// GetBySlug 根据 slug 获取组织
func (r *OrganizationRepository) GetBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.GetBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var org entity.Organization
	if err := db.First(&org, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get organization by slug: %w", err)
	}
	return &org, nil
}

// ListByProfile 列出档案所属的全部组织
func (r *OrganizationRepository) ListByProfile(ctx context.Context, profileID string) ([]*entity.Organization, error) {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.ListByProfile")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var orgs []*entity.Organization
	if err := db.
		Joins("JOIN organization_members ON organization_members.organization_id = organizations.id").
		Where("organization_members.profile_id = ?", profileID).
		Order("organizations.created_at ASC").
		Find(&orgs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// Update 更新组织
func (r *OrganizationRepository) Update(ctx context.Context, org *entity.Organization) error {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	org.UpdatedAt = time.Now()
	if err := db.Save(org).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

// Delete 删除组织
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.OrganizationRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Delete(&entity.Organization{}, "id = ?", id)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to delete organization: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MemberRepository 组织成员仓储实现
type MemberRepository struct {
	client *Client
}

// NewMemberRepository 创建组织成员仓储
func NewMemberRepository(client *Client) *MemberRepository {
	return &MemberRepository{client: client}
}

// Add 添加成员
func (r *MemberRepository) Add(ctx context.Context, member *entity.OrganizationMember) error {
	ctx, span := tracer.Start(ctx, "postgres.MemberRepository.Add")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateKey
		}
		span.RecordError(err)
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// Get 按组织与档案获取成员关系
func (r *MemberRepository) Get(ctx context.Context, organizationID, profileID string) (*entity.OrganizationMember, error) {
	ctx, span := tracer.Start(ctx, "postgres.MemberRepository.Get")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var member entity.OrganizationMember
	if err := db.First(&member, "organization_id = ? AND profile_id = ?", organizationID, profileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

// GetByID 根据成员记录 ID 获取成员关系
func (r *MemberRepository) GetByID(ctx context.Context, organizationID, memberID string) (*entity.OrganizationMember, error) {
	ctx, span := tracer.Start(ctx, "postgres.MemberRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var member entity.OrganizationMember
	if err := db.First(&member, "id = ? AND organization_id = ?", memberID, organizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &member, nil
}

// ListByOrganization 列出组织的全部成员
func (r *MemberRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*entity.OrganizationMember, error) {
	ctx, span := tracer.Start(ctx, "postgres.MemberRepository.ListByOrganization")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var members []*entity.OrganizationMember
	if err := db.Where("organization_id = ?", organizationID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Remove 按成员记录 ID 移除成员
func (r *MemberRepository) Remove(ctx context.Context, organizationID, memberID string) error {
	ctx, span := tracer.Start(ctx, "postgres.MemberRepository.Remove")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Delete(&entity.OrganizationMember{}, "id = ? AND organization_id = ?", memberID, organizationID)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to remove member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveByProfile 按组织与档案移除成员
func (r *MemberRepository) RemoveByProfile(ctx context.Context, organizationID, profileID string) error {
	ctx, span := tracer.Start(ctx, "postgres.MemberRepository.RemoveByProfile")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Delete(&entity.OrganizationMember{}, "organization_id = ? AND profile_id = ?", organizationID, profileID)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to remove member: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
