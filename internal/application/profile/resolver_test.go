package profile

import (
	"context"
	"testing"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
)

type mockProfileRepo struct {
	byExternal map[string]*entity.Profile

	missOnce    bool // 第一次读返回 nil，模拟插入竞争窗口
	createCalls int
	deleted     []string
	onboarded   []string
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{byExternal: map[string]*entity.Profile{}}
}

func (m *mockProfileRepo) Create(ctx context.Context, p *entity.Profile) error {
	m.createCalls++
	if _, ok := m.byExternal[p.ExternalID]; ok {
		return repository.ErrDuplicateKey
	}
	m.byExternal[p.ExternalID] = p
	return nil
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	for _, p := range m.byExternal {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockProfileRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Profile, error) {
	if m.missOnce {
		m.missOnce = false
		return nil, nil
	}
	return m.byExternal[externalID], nil
}

func (m *mockProfileRepo) Update(ctx context.Context, p *entity.Profile) error {
	m.byExternal[p.ExternalID] = p
	return nil
}

func (m *mockProfileRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	for ext, p := range m.byExternal {
		if p.ID == id {
			delete(m.byExternal, ext)
		}
	}
	return nil
}

func (m *mockProfileRepo) SetOnboardingCompleted(ctx context.Context, id string) error {
	m.onboarded = append(m.onboarded, id)
	return nil
}

func TestEnsureCreatesOnFirstSight(t *testing.T) {
	repo := newMockProfileRepo()
	resolver := NewResolver(repo)

	p, err := resolver.Ensure(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.ExternalID != "ext-1" {
		t.Errorf("external id = %s, want ext-1", p.ExternalID)
	}
	if repo.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", repo.createCalls)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	repo := newMockProfileRepo()
	resolver := NewResolver(repo)

	first, err := resolver.Ensure(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	second, err := resolver.Ensure(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if repo.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", repo.createCalls)
	}
}

func TestEnsureLosingInsertRaceReadsWinner(t *testing.T) {
	repo := newMockProfileRepo()
	winner := entity.NewProfile("ext-1")
	repo.byExternal["ext-1"] = winner
	repo.missOnce = true

	resolver := NewResolver(repo)

	p, err := resolver.Ensure(context.Background(), "ext-1")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.ID != winner.ID {
		t.Errorf("resolved id = %s, want winner %s", p.ID, winner.ID)
	}
}

func TestEnsureWithClaimsStoresIdentityFields(t *testing.T) {
	repo := newMockProfileRepo()
	resolver := NewResolver(repo)

	email := "writer@example.com"
	name := "Writer"
	p, err := resolver.EnsureWithClaims(context.Background(), "ext-1", &email, &name, nil)
	if err != nil {
		t.Fatalf("EnsureWithClaims: %v", err)
	}
	if p.Email == nil || *p.Email != email {
		t.Errorf("email not stored: %v", p.Email)
	}
	if p.Name == nil || *p.Name != name {
		t.Errorf("name not stored: %v", p.Name)
	}
	if p.ImageURL != nil {
		t.Errorf("image should stay nil, got %v", p.ImageURL)
	}
}

func TestRemoveDeletesExistingProfile(t *testing.T) {
	repo := newMockProfileRepo()
	existing := entity.NewProfile("ext-1")
	repo.byExternal["ext-1"] = existing

	resolver := NewResolver(repo)

	if err := resolver.Remove(context.Background(), "ext-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != existing.ID {
		t.Errorf("deleted = %v, want [%s]", repo.deleted, existing.ID)
	}
}

func TestRemoveUnknownExternalIDIsNoop(t *testing.T) {
	repo := newMockProfileRepo()
	resolver := NewResolver(repo)

	if err := resolver.Remove(context.Background(), "ghost"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Errorf("deleted = %v, want empty", repo.deleted)
	}
}
