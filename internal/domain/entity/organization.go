// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole 组织成员角色
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// Organization 组织（租户），拥有文章、风格指南、订阅和配额记录
type Organization struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug" gorm:"uniqueIndex"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewOrganization 创建新组织
func NewOrganization(name, slug string) *Organization {
	now := time.Now()
	return &Organization{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OrganizationMember 组织成员关系
// 不变式：每个组织恰好有一个 owner；owner 不能通过成员移除路径被移除
type OrganizationMember struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	OrganizationID string     `json:"organization_id" gorm:"uniqueIndex:idx_org_profile"`
	ProfileID      string     `json:"profile_id" gorm:"uniqueIndex:idx_org_profile"`
	Role           MemberRole `json:"role"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewOrganizationMember 创建成员关系
func NewOrganizationMember(orgID, profileID string, role MemberRole) *OrganizationMember {
	return &OrganizationMember{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		ProfileID:      profileID,
		Role:           role,
		CreatedAt:      time.Now(),
	}
}

// IsOwner 检查成员是否为 owner
func (m *OrganizationMember) IsOwner() bool {
	return m.Role == MemberRoleOwner
}
