package organization

import (
	"context"
	"errors"
	"testing"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	apperrors "inkpress-ai-api/pkg/errors"
)

type mockOrgRepo struct {
	orgs map[string]*entity.Organization
	// members 由 mockMemberRepo 共享，用于 ListByProfile
	members *mockMemberRepo
}

func (m *mockOrgRepo) Create(ctx context.Context, org *entity.Organization) error {
	for _, existing := range m.orgs {
		if existing.Slug == org.Slug {
			return repository.ErrDuplicateKey
		}
	}
	m.orgs[org.ID] = org
	return nil
}

func (m *mockOrgRepo) GetByID(ctx context.Context, id string) (*entity.Organization, error) {
	return m.orgs[id], nil
}

func (m *mockOrgRepo) GetBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	for _, org := range m.orgs {
		if org.Slug == slug {
			return org, nil
		}
	}
	return nil, nil
}

func (m *mockOrgRepo) ListByProfile(ctx context.Context, profileID string) ([]*entity.Organization, error) {
	var orgs []*entity.Organization
	for _, member := range m.members.items {
		if member.ProfileID == profileID {
			if org, ok := m.orgs[member.OrganizationID]; ok {
				orgs = append(orgs, org)
			}
		}
	}
	return orgs, nil
}

func (m *mockOrgRepo) Update(ctx context.Context, org *entity.Organization) error {
	m.orgs[org.ID] = org
	return nil
}

func (m *mockOrgRepo) Delete(ctx context.Context, id string) error {
	delete(m.orgs, id)
	return nil
}

type mockMemberRepo struct {
	items []*entity.OrganizationMember
}

func (m *mockMemberRepo) Add(ctx context.Context, member *entity.OrganizationMember) error {
	for _, existing := range m.items {
		if existing.OrganizationID == member.OrganizationID && existing.ProfileID == member.ProfileID {
			return repository.ErrDuplicateKey
		}
	}
	m.items = append(m.items, member)
	return nil
}

func (m *mockMemberRepo) Get(ctx context.Context, orgID, profileID string) (*entity.OrganizationMember, error) {
	for _, member := range m.items {
		if member.OrganizationID == orgID && member.ProfileID == profileID {
			return member, nil
		}
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByID(ctx context.Context, orgID, memberID string) (*entity.OrganizationMember, error) {
	for _, member := range m.items {
		if member.OrganizationID == orgID && member.ID == memberID {
			return member, nil
		}
	}
	return nil, nil
}

func (m *mockMemberRepo) ListByOrganization(ctx context.Context, orgID string) ([]*entity.OrganizationMember, error) {
	var members []*entity.OrganizationMember
	for _, member := range m.items {
		if member.OrganizationID == orgID {
			members = append(members, member)
		}
	}
	return members, nil
}

func (m *mockMemberRepo) Remove(ctx context.Context, orgID, memberID string) error {
	for i, member := range m.items {
		if member.OrganizationID == orgID && member.ID == memberID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockMemberRepo) RemoveByProfile(ctx context.Context, orgID, profileID string) error {
	for i, member := range m.items {
		if member.OrganizationID == orgID && member.ProfileID == profileID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type passthroughTransactor struct{}

func (passthroughTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockOrgRepo, *mockMemberRepo) {
	memberRepo := &mockMemberRepo{}
	orgRepo := &mockOrgRepo{orgs: map[string]*entity.Organization{}, members: memberRepo}
	return NewService(orgRepo, memberRepo, passthroughTransactor{}), orgRepo, memberRepo
}

func TestCreateMakesCallerOwner(t *testing.T) {
	svc, _, memberRepo := newTestService()

	org, err := svc.Create(context.Background(), "profile-1", "Acme Press", "blog team")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if org.Slug != "acme-press" {
		t.Errorf("slug = %q, want acme-press", org.Slug)
	}

	member, err := memberRepo.Get(context.Background(), org.ID, "profile-1")
	if err != nil || member == nil {
		t.Fatalf("creator membership missing: %v", err)
	}
	if !member.IsOwner() {
		t.Errorf("creator role = %s, want owner", member.Role)
	}
}

func TestAddMemberRequiresOwner(t *testing.T) {
	svc, _, _ := newTestService()
	org, err := svc.Create(context.Background(), "owner-1", "Acme Press", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddMember(context.Background(), "owner-1", org.ID, "member-1", entity.MemberRoleMember); err != nil {
		t.Fatalf("AddMember by owner: %v", err)
	}

	_, err = svc.AddMember(context.Background(), "member-1", org.ID, "member-2", entity.MemberRoleMember)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodePermissionDenied {
		t.Fatalf("err = %v, want permission denied", err)
	}
}

func TestAddMemberRejectsOwnerRole(t *testing.T) {
	svc, _, memberRepo := newTestService()
	org, err := svc.Create(context.Background(), "owner-1", "Acme Press", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.AddMember(context.Background(), "owner-1", org.ID, "profile-2", entity.MemberRoleOwner)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidParam {
		t.Fatalf("err = %v, want invalid parameter", err)
	}

	owners := 0
	for _, member := range memberRepo.items {
		if member.OrganizationID == org.ID && member.IsOwner() {
			owners++
		}
	}
	if owners != 1 {
		t.Errorf("owners = %d, want exactly one", owners)
	}
}

func TestRemoveMemberRejectsOwner(t *testing.T) {
	svc, _, memberRepo := newTestService()
	org, err := svc.Create(context.Background(), "owner-1", "Acme Press", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	owner, _ := memberRepo.Get(context.Background(), org.ID, "owner-1")

	err = svc.RemoveMember(context.Background(), "owner-1", org.ID, owner.ID)
	if !errors.Is(err, apperrors.ErrCannotRemoveOwner) {
		t.Fatalf("err = %v, want ErrCannotRemoveOwner", err)
	}
}

func TestRemoveMemberDeletesRegularMember(t *testing.T) {
	svc, _, memberRepo := newTestService()
	org, err := svc.Create(context.Background(), "owner-1", "Acme Press", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	added, err := svc.AddMember(context.Background(), "owner-1", org.ID, "member-1", entity.MemberRoleMember)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := svc.RemoveMember(context.Background(), "owner-1", org.ID, added.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if member, _ := memberRepo.Get(context.Background(), org.ID, "member-1"); member != nil {
		t.Error("member should have been removed")
	}
}

func TestLeaveRejectsOwner(t *testing.T) {
	svc, _, _ := newTestService()
	org, err := svc.Create(context.Background(), "owner-1", "Acme Press", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Leave(context.Background(), "owner-1", org.ID); !errors.Is(err, apperrors.ErrOwnerCannotLeave) {
		t.Fatalf("err = %v, want ErrOwnerCannotLeave", err)
	}
}

func TestCheckMembershipRejectsOutsider(t *testing.T) {
	svc, _, _ := newTestService()
	org, err := svc.Create(context.Background(), "owner-1", "Acme Press", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.CheckMembership(context.Background(), org.ID, "stranger"); !errors.Is(err, apperrors.ErrNotMember) {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
}

func TestResolveDefaultCreatesPersonalOrganizationOnce(t *testing.T) {
	svc, orgRepo, _ := newTestService()

	org, err := svc.ResolveDefault(context.Background(), "profile-12345678")
	if err != nil {
		t.Fatalf("ResolveDefault: %v", err)
	}
	if org.Slug != "personal-profile-" {
		t.Errorf("slug = %q, want personal-profile-", org.Slug)
	}

	again, err := svc.ResolveDefault(context.Background(), "profile-12345678")
	if err != nil {
		t.Fatalf("second ResolveDefault: %v", err)
	}
	if again.ID != org.ID {
		t.Error("second resolve should return the same organization")
	}
	if len(orgRepo.orgs) != 1 {
		t.Errorf("organizations = %d, want 1", len(orgRepo.orgs))
	}
}

func TestResolveDefaultPrefersExistingOrganization(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.Create(context.Background(), "profile-1", "Acme Press", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resolved, err := svc.ResolveDefault(context.Background(), "profile-1")
	if err != nil {
		t.Fatalf("ResolveDefault: %v", err)
	}
	if resolved.ID != created.ID {
		t.Errorf("resolved %s, want existing organization %s", resolved.ID, created.ID)
	}
}
