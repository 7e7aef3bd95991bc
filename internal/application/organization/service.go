// Package organization 提供组织与成员关系的管理
package organization

import (
	"context"
	"errors"
	"fmt"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/utils"
)

// Service 组织服务
// 所有成员变更入口先过所有权守卫，而不是通用 ACL 引擎
type Service struct {
	orgRepo    repository.OrganizationRepository
	memberRepo repository.MemberRepository
	transactor repository.Transactor
}

// NewService 创建组织服务
func NewService(orgRepo repository.OrganizationRepository, memberRepo repository.MemberRepository, transactor repository.Transactor) *Service {
	return &Service{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		transactor: transactor,
	}
}

// Create 创建组织，创建者自动成为 owner
func (s *Service) Create(ctx context.Context, profileID, name, description string) (*entity.Organization, error) {
	org := entity.NewOrganization(name, utils.Slugify(name))
	org.Description = description

	err := s.transactor.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orgRepo.Create(txCtx, org); err != nil {
			return err
		}
		owner := entity.NewOrganizationMember(org.ID, profileID, entity.MemberRoleOwner)
		return s.memberRepo.Add(txCtx, owner)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.New(apperrors.CodeConflict, "organization slug already taken")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create organization")
	}
	return org, nil
}

// Get 获取组织，要求调用者是成员
func (s *Service) Get(ctx context.Context, profileID, orgID string) (*entity.Organization, error) {
	if _, err := s.CheckMembership(ctx, orgID, profileID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get organization")
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}
	return org, nil
}

// List 列出调用者所属的组织
func (s *Service) List(ctx context.Context, profileID string) ([]*entity.Organization, error) {
	orgs, err := s.orgRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list organizations")
	}
	return orgs, nil
}

// ResolveDefault 返回调用者的首个组织；没有任何组织时自动建一个个人组织
// 配额与订阅都挂在组织上，个人组织保证每个档案总有可计费的主体
func (s *Service) ResolveDefault(ctx context.Context, profileID string) (*entity.Organization, error) {
	orgs, err := s.List(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if len(orgs) > 0 {
		return orgs[0], nil
	}

	slug := "personal-" + profileID
	if len(profileID) >= 8 {
		slug = "personal-" + profileID[:8]
	}
	org := entity.NewOrganization("Personal", slug)

	err = s.transactor.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orgRepo.Create(txCtx, org); err != nil {
			return err
		}
		owner := entity.NewOrganizationMember(org.ID, profileID, entity.MemberRoleOwner)
		return s.memberRepo.Add(txCtx, owner)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// 并发请求同时建档，回读胜者
			if orgs, listErr := s.List(ctx, profileID); listErr == nil && len(orgs) > 0 {
				return orgs[0], nil
			}
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create personal organization")
	}
	return org, nil
}

// Update 更新组织信息，仅 owner 可操作
func (s *Service) Update(ctx context.Context, profileID, orgID, name, description string) (*entity.Organization, error) {
	if _, err := s.CheckOwnership(ctx, orgID, profileID); err != nil {
		return nil, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get organization")
	}
	if org == nil {
		return nil, apperrors.ErrOrganizationNotFound
	}

	if name != "" {
		org.Name = name
	}
	if description != "" {
		org.Description = description
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update organization")
	}
	return org, nil
}

// Delete 删除组织，仅 owner 可操作
func (s *Service) Delete(ctx context.Context, profileID, orgID string) error {
	if _, err := s.CheckOwnership(ctx, orgID, profileID); err != nil {
		return err
	}
	if err := s.orgRepo.Delete(ctx, orgID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete organization")
	}
	return nil
}

// AddMember 添加成员，仅 owner 可操作
func (s *Service) AddMember(ctx context.Context, callerProfileID, orgID, profileID string, role entity.MemberRole) (*entity.OrganizationMember, error) {
	if _, err := s.CheckOwnership(ctx, orgID, callerProfileID); err != nil {
		return nil, err
	}
	if role == "" {
		role = entity.MemberRoleMember
	}
	// 组织有且只有一个 owner：owner 角色只在创建组织时授予
	if role == entity.MemberRoleOwner {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "organization already has an owner")
	}

	member := entity.NewOrganizationMember(orgID, profileID, role)
	if err := s.memberRepo.Add(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.New(apperrors.CodeConflict, "profile is already a member")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to add member")
	}
	return member, nil
}

// ListMembers 列出组织成员，要求调用者是成员
func (s *Service) ListMembers(ctx context.Context, profileID, orgID string) ([]*entity.OrganizationMember, error) {
	if _, err := s.CheckMembership(ctx, orgID, profileID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list members")
	}
	return members, nil
}

// RemoveMember 移除成员，仅 owner 可操作；owner 本身不可被移除
func (s *Service) RemoveMember(ctx context.Context, callerProfileID, orgID, memberID string) error {
	if _, err := s.CheckOwnership(ctx, orgID, callerProfileID); err != nil {
		return err
	}

	target, err := s.memberRepo.GetByID(ctx, orgID, memberID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get member")
	}
	if target == nil {
		return apperrors.New(apperrors.CodeNotFound, "member not found")
	}
	if target.IsOwner() {
		return apperrors.ErrCannotRemoveOwner
	}

	if err := s.memberRepo.Remove(ctx, orgID, memberID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to remove member")
	}
	return nil
}

// Leave 退出组织；owner 不能退出，只能删除组织
func (s *Service) Leave(ctx context.Context, profileID, orgID string) error {
	member, err := s.CheckMembership(ctx, orgID, profileID)
	if err != nil {
		return err
	}
	if member.IsOwner() {
		return apperrors.ErrOwnerCannotLeave
	}
	if err := s.memberRepo.RemoveByProfile(ctx, orgID, profileID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to leave organization")
	}
	return nil
}

// CheckMembership 成员守卫：档案必须在组织成员表里
func (s *Service) CheckMembership(ctx context.Context, orgID, profileID string) (*entity.OrganizationMember, error) {
	member, err := s.memberRepo.Get(ctx, orgID, profileID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check membership")
	}
	if member == nil {
		return nil, apperrors.ErrNotMember
	}
	return member, nil
}

// CheckOwnership 所有权守卫：成员且角色为 owner
func (s *Service) CheckOwnership(ctx context.Context, orgID, profileID string) (*entity.OrganizationMember, error) {
	member, err := s.CheckMembership(ctx, orgID, profileID)
	if err != nil {
		return nil, err
	}
	if !member.IsOwner() {
		return nil, apperrors.New(apperrors.CodePermissionDenied, fmt.Sprintf("profile %s is not the owner", profileID))
	}
	return member, nil
}
