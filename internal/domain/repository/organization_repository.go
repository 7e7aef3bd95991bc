// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"inkpress-ai-api/internal/domain/entity"
)

// OrganizationRepository 组织仓储接口
type OrganizationRepository interface {
	// Create 创建组织
	Create(ctx context.Context, org *entity.Organization) error

	// GetByID 根据 ID 获取组织
	GetByID(ctx context.Context, id string) (*entity.Organization, error)

	// GetBySlug 根据 slug 获取组织，不存在时返回 nil
	GetBySlug(ctx context.Context, slug string) (*entity.Organization, error)

	// ListByProfile 列出档案所属的组织
	ListByProfile(ctx context.Context, profileID string) ([]*entity.Organization, error)

	// Update 更新组织
	Update(ctx context.Context, org *entity.Organization) error

	// Delete 删除组织（级联删除成员关系）
	Delete(ctx context.Context, id string) error
}

// MemberRepository 组织成员仓储接口
type MemberRepository interface {
	// Add 添加成员；重复加入返回 ErrDuplicateKey
	Add(ctx context.Context, member *entity.OrganizationMember) error

	// Get 获取成员关系
	Get(ctx context.Context, orgID, profileID string) (*entity.OrganizationMember, error)

	// GetByID 根据成员记录 ID 获取成员关系
	GetByID(ctx context.Context, orgID, memberID string) (*entity.OrganizationMember, error)

	// ListByOrganization 列出组织全部成员
	ListByOrganization(ctx context.Context, orgID string) ([]*entity.OrganizationMember, error)

	// Remove 移除成员记录
	Remove(ctx context.Context, orgID, memberID string) error

	// RemoveByProfile 按档案移除成员记录（退出组织路径）
	RemoveByProfile(ctx context.Context, orgID, profileID string) error
}
