package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	apperrors "inkpress-ai-api/pkg/errors"
)

type mockQuotaRepo struct {
	records map[string]*entity.GenerationQuota

	createErr     error
	incrementFail bool // 强制 CAS 零行命中
	missOnce      bool // 第一次读返回 nil，模拟插入竞争窗口
	createCalls   int
}

func newMockQuotaRepo() *mockQuotaRepo {
	return &mockQuotaRepo{records: map[string]*entity.GenerationQuota{}}
}

func (m *mockQuotaRepo) Create(ctx context.Context, quota *entity.GenerationQuota) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.records[quota.OrganizationID]; ok {
		return repository.ErrDuplicateKey
	}
	m.records[quota.OrganizationID] = quota
	return nil
}

func (m *mockQuotaRepo) GetByOrganization(ctx context.Context, orgID string) (*entity.GenerationQuota, error) {
	if m.missOnce {
		m.missOnce = false
		return nil, nil
	}
	return m.records[orgID], nil
}

func (m *mockQuotaRepo) IncrementCount(ctx context.Context, orgID string, observed int) (bool, error) {
	if m.incrementFail {
		return false, nil
	}
	record, ok := m.records[orgID]
	if !ok || record.GenerationCount != observed {
		return false, nil
	}
	record.GenerationCount = observed + 1
	return true, nil
}

func (m *mockQuotaRepo) Reset(ctx context.Context, orgID string, periodStart, periodEnd time.Time) error {
	record, ok := m.records[orgID]
	if !ok {
		return errors.New("quota not found")
	}
	record.GenerationCount = 0
	record.PeriodStart = periodStart
	record.PeriodEnd = periodEnd
	return nil
}

func (m *mockQuotaRepo) SetTier(ctx context.Context, orgID string, tier entity.Tier, limit, count int) error {
	record, ok := m.records[orgID]
	if !ok {
		return errors.New("quota not found")
	}
	record.Tier = tier
	record.MonthlyLimit = limit
	record.GenerationCount = count
	return nil
}

func testBillingConfig() *config.BillingConfig {
	return &config.BillingConfig{
		FreeMonthlyGenerations: 5,
		ProMonthlyGenerations:  100,
	}
}

func TestCheckCreatesFreeRecordLazily(t *testing.T) {
	repo := newMockQuotaRepo()
	tracker := NewTracker(repo, testBillingConfig())

	status, err := tracker.Check(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !status.Allowed {
		t.Error("fresh quota should allow generation")
	}
	if status.Tier != entity.TierFree {
		t.Errorf("tier = %s, want free", status.Tier)
	}
	if status.Remaining != 5 {
		t.Errorf("remaining = %d, want 5", status.Remaining)
	}
	if _, ok := repo.records["org-1"]; !ok {
		t.Error("quota record should have been created")
	}
}

func TestCheckLosingInsertRaceReadsWinner(t *testing.T) {
	repo := newMockQuotaRepo()
	// 赢家的行已落库，但本协程第一次读落在竞争窗口里
	winner := entity.NewGenerationQuota("org-1", 5, time.Now())
	winner.GenerationCount = 3
	repo.records["org-1"] = winner
	repo.missOnce = true
	repo.createErr = repository.ErrDuplicateKey

	tracker := NewTracker(repo, testBillingConfig())

	status, err := tracker.Check(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if repo.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", repo.createCalls)
	}
	if status.CurrentCount != 3 {
		t.Errorf("current count = %d, want winner's 3", status.CurrentCount)
	}
}

func TestIncrementAdvancesCounter(t *testing.T) {
	repo := newMockQuotaRepo()
	tracker := NewTracker(repo, testBillingConfig())

	for i := 1; i <= 5; i++ {
		status, err := tracker.Increment(context.Background(), "org-1")
		if err != nil {
			t.Fatalf("Increment #%d: %v", i, err)
		}
		if status.CurrentCount != i {
			t.Errorf("current count = %d, want %d", status.CurrentCount, i)
		}
		if status.Remaining != 5-i {
			t.Errorf("remaining = %d, want %d", status.Remaining, 5-i)
		}
	}
}

func TestIncrementRejectsWhenExhausted(t *testing.T) {
	repo := newMockQuotaRepo()
	record := entity.NewGenerationQuota("org-1", 5, time.Now())
	record.GenerationCount = 5
	repo.records["org-1"] = record

	tracker := NewTracker(repo, testBillingConfig())

	_, err := tracker.Increment(context.Background(), "org-1")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeQuotaExceeded {
		t.Fatalf("err = %v, want quota exceeded", err)
	}
}

func TestIncrementSurfacesConcurrentConflict(t *testing.T) {
	repo := newMockQuotaRepo()
	repo.records["org-1"] = entity.NewGenerationQuota("org-1", 5, time.Now())
	repo.incrementFail = true

	tracker := NewTracker(repo, testBillingConfig())

	_, err := tracker.Increment(context.Background(), "org-1")
	if !errors.Is(err, apperrors.ErrQuotaConflict) {
		t.Fatalf("err = %v, want ErrQuotaConflict", err)
	}
}

func TestUpgradeResetsCountAtProLimit(t *testing.T) {
	repo := newMockQuotaRepo()
	record := entity.NewGenerationQuota("org-1", 5, time.Now())
	record.GenerationCount = 5
	repo.records["org-1"] = record

	tracker := NewTracker(repo, testBillingConfig())

	if err := tracker.Upgrade(context.Background(), "org-1"); err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if record.Tier != entity.TierPro {
		t.Errorf("tier = %s, want pro", record.Tier)
	}
	if record.MonthlyLimit != 100 || record.GenerationCount != 0 {
		t.Errorf("limit/count = %d/%d, want 100/0", record.MonthlyLimit, record.GenerationCount)
	}
}

// 降级路径沿用既有产品行为：计数被顶到 Free 上限，剩余额度立即归零
func TestDowngradeExhaustedLeavesZeroRemaining(t *testing.T) {
	repo := newMockQuotaRepo()
	record := entity.NewGenerationQuota("org-1", 100, time.Now())
	record.Tier = entity.TierPro
	record.GenerationCount = 2
	repo.records["org-1"] = record

	tracker := NewTracker(repo, testBillingConfig())

	if err := tracker.DowngradeExhausted(context.Background(), "org-1"); err != nil {
		t.Fatalf("DowngradeExhausted: %v", err)
	}

	status, err := tracker.Check(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Tier != entity.TierFree {
		t.Errorf("tier = %s, want free", status.Tier)
	}
	if status.Remaining != 0 {
		t.Errorf("remaining = %d, want 0 right after downgrade", status.Remaining)
	}
	if status.Allowed {
		t.Error("generation should not be allowed right after downgrade")
	}
}
