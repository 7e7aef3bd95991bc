package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkpress-ai-api/internal/application/quota"
	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	"inkpress-ai-api/internal/infrastructure/payment"
	apperrors "inkpress-ai-api/pkg/errors"
)

type mockSubRepo struct {
	byOrg map[string]*entity.Subscription
	due   []*entity.Subscription
}

func newMockSubRepo() *mockSubRepo {
	return &mockSubRepo{byOrg: map[string]*entity.Subscription{}}
}

func (m *mockSubRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	if _, ok := m.byOrg[sub.OrganizationID]; ok {
		return repository.ErrDuplicateKey
	}
	m.byOrg[sub.OrganizationID] = sub
	return nil
}

func (m *mockSubRepo) GetByOrganization(ctx context.Context, orgID string) (*entity.Subscription, error) {
	return m.byOrg[orgID], nil
}

func (m *mockSubRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	m.byOrg[sub.OrganizationID] = sub
	return nil
}

func (m *mockSubRepo) ListDueForBilling(ctx context.Context, billingDate time.Time) ([]*entity.Subscription, error) {
	return m.due, nil
}

func (m *mockSubRepo) TallyByPlanStatus(ctx context.Context) ([]repository.SubscriptionTally, error) {
	counts := map[repository.SubscriptionTally]int64{}
	for _, sub := range m.byOrg {
		key := repository.SubscriptionTally{Plan: sub.Plan, Status: sub.Status}
		counts[key]++
	}
	var tallies []repository.SubscriptionTally
	for key, count := range counts {
		key.Count = count
		tallies = append(tallies, key)
	}
	return tallies, nil
}

type mockPaymentRepo struct {
	payments []*entity.Payment
	methods  []*entity.PaymentMethod
}

func (m *mockPaymentRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	m.payments = append(m.payments, p)
	return nil
}

func (m *mockPaymentRepo) ListPayments(ctx context.Context, orgID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Payment], error) {
	var items []*entity.Payment
	for _, p := range m.payments {
		if p.OrganizationID == orgID {
			items = append(items, p)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

func (m *mockPaymentRepo) CreatePaymentMethod(ctx context.Context, method *entity.PaymentMethod) error {
	m.methods = append(m.methods, method)
	return nil
}

func (m *mockPaymentRepo) ListPaymentMethods(ctx context.Context, orgID string) ([]*entity.PaymentMethod, error) {
	var items []*entity.PaymentMethod
	for _, method := range m.methods {
		if method.OrganizationID == orgID {
			items = append(items, method)
		}
	}
	return items, nil
}

func (m *mockPaymentRepo) DeletePaymentMethods(ctx context.Context, orgID string) error {
	var kept []*entity.PaymentMethod
	for _, method := range m.methods {
		if method.OrganizationID != orgID {
			kept = append(kept, method)
		}
	}
	m.methods = kept
	return nil
}

type mockGateway struct {
	chargeErr   error
	declineKeys map[string]error
	chargeCalls int
	revoked     []string
}

func (m *mockGateway) RegisterBillingKey(ctx context.Context, organizationID, paymentMethodID string) (*payment.BillingKey, error) {
	return &payment.BillingKey{
		CustomerKey: "cus_" + organizationID,
		Key:         "pm_" + paymentMethodID,
		CardBrand:   "visa",
		CardLast4:   "4242",
	}, nil
}

func (m *mockGateway) Charge(ctx context.Context, customerKey, billingKey string, amountCents int64, description string) (*payment.ChargeResult, error) {
	m.chargeCalls++
	if m.chargeErr != nil {
		return nil, m.chargeErr
	}
	if err, ok := m.declineKeys[billingKey]; ok {
		return nil, err
	}
	return &payment.ChargeResult{GatewayPaymentID: "pi_test"}, nil
}

func (m *mockGateway) RevokeBillingKey(ctx context.Context, billingKey string) error {
	m.revoked = append(m.revoked, billingKey)
	return nil
}

// quotaStub 最小配额仓储，供 Tracker 在计费测试里使用
type quotaStub struct {
	records map[string]*entity.GenerationQuota
}

func newQuotaStub() *quotaStub {
	return &quotaStub{records: map[string]*entity.GenerationQuota{}}
}

func (m *quotaStub) Create(ctx context.Context, q *entity.GenerationQuota) error {
	m.records[q.OrganizationID] = q
	return nil
}

func (m *quotaStub) GetByOrganization(ctx context.Context, orgID string) (*entity.GenerationQuota, error) {
	return m.records[orgID], nil
}

func (m *quotaStub) IncrementCount(ctx context.Context, orgID string, observed int) (bool, error) {
	m.records[orgID].GenerationCount = observed + 1
	return true, nil
}

func (m *quotaStub) Reset(ctx context.Context, orgID string, periodStart, periodEnd time.Time) error {
	if record, ok := m.records[orgID]; ok {
		record.GenerationCount = 0
		record.PeriodStart = periodStart
		record.PeriodEnd = periodEnd
	}
	return nil
}

func (m *quotaStub) SetTier(ctx context.Context, orgID string, tier entity.Tier, limit, count int) error {
	record, ok := m.records[orgID]
	if !ok {
		record = entity.NewGenerationQuota(orgID, limit, time.Now())
		m.records[orgID] = record
	}
	record.Tier = tier
	record.MonthlyLimit = limit
	record.GenerationCount = count
	return nil
}

type billingFixture struct {
	svc     *Service
	subRepo *mockSubRepo
	payRepo *mockPaymentRepo
	gateway *mockGateway
	quotas  *quotaStub
	tracker *quota.Tracker
}

func newBillingFixture() *billingFixture {
	cfg := &config.BillingConfig{
		ProPriceCents:          2900,
		Currency:               "usd",
		FreeMonthlyGenerations: 5,
		ProMonthlyGenerations:  100,
	}
	subRepo := newMockSubRepo()
	payRepo := &mockPaymentRepo{}
	gateway := &mockGateway{}
	quotas := newQuotaStub()
	tracker := quota.NewTracker(quotas, cfg)
	return &billingFixture{
		svc:     NewService(subRepo, payRepo, gateway, tracker, cfg),
		subRepo: subRepo,
		payRepo: payRepo,
		gateway: gateway,
		quotas:  quotas,
		tracker: tracker,
	}
}

func TestGetCreatesFreeSubscriptionLazily(t *testing.T) {
	f := newBillingFixture()

	sub, err := f.svc.Get(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sub.Plan != entity.PlanFree || sub.Status != entity.SubscriptionStatusActive {
		t.Errorf("plan/status = %s/%s, want free/active", sub.Plan, sub.Status)
	}
}

func TestUpgradeChargesAndActivatesPro(t *testing.T) {
	f := newBillingFixture()

	sub, err := f.svc.Upgrade(context.Background(), "org-1", "card-1")
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if !sub.IsProActive() {
		t.Errorf("plan/status = %s/%s, want pro/active", sub.Plan, sub.Status)
	}
	if sub.BillingKey == nil || *sub.BillingKey != "pm_card-1" {
		t.Errorf("billing key = %v", sub.BillingKey)
	}
	if sub.NextBillingDate == nil {
		t.Error("next billing date should be set")
	}
	if len(f.payRepo.payments) != 1 || f.payRepo.payments[0].Status != entity.PaymentStatusDone {
		t.Errorf("payments = %v", f.payRepo.payments)
	}
	if len(f.payRepo.methods) != 1 {
		t.Errorf("payment methods = %v", f.payRepo.methods)
	}
	if record := f.quotas.records["org-1"]; record == nil || record.Tier != entity.TierPro {
		t.Errorf("quota tier not upgraded: %+v", record)
	}
}

func TestUpgradeAlreadyProRejected(t *testing.T) {
	f := newBillingFixture()

	if _, err := f.svc.Upgrade(context.Background(), "org-1", "card-1"); err != nil {
		t.Fatalf("first Upgrade: %v", err)
	}
	_, err := f.svc.Upgrade(context.Background(), "org-1", "card-2")
	if !errors.Is(err, apperrors.ErrAlreadyPro) {
		t.Fatalf("err = %v, want ErrAlreadyPro", err)
	}
	if f.gateway.chargeCalls != 1 {
		t.Errorf("charge calls = %d, want 1", f.gateway.chargeCalls)
	}
}

func TestUpgradeChargeDeclineLeavesStateUnchanged(t *testing.T) {
	f := newBillingFixture()
	f.gateway.chargeErr = &payment.ChargeError{Code: "card_declined", Message: "insufficient funds"}

	_, err := f.svc.Upgrade(context.Background(), "org-1", "card-1")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodePaymentFailed {
		t.Fatalf("err = %v, want payment failed", err)
	}

	sub := f.subRepo.byOrg["org-1"]
	if sub.Plan != entity.PlanFree {
		t.Errorf("plan = %s, decline must not change plan", sub.Plan)
	}
	if sub.BillingKey != nil {
		t.Error("billing key must not be stored after decline")
	}
}

func TestCancelEntersGracePeriod(t *testing.T) {
	f := newBillingFixture()
	if _, err := f.svc.Upgrade(context.Background(), "org-1", "card-1"); err != nil {
		t.Fatalf("Upgrade: %v", err)
	}

	sub, err := f.svc.Cancel(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if sub.Status != entity.SubscriptionStatusCanceled {
		t.Errorf("status = %s, want canceled", sub.Status)
	}
	if sub.Plan != entity.PlanPro {
		t.Errorf("plan = %s, cancel keeps the pro plan through the grace period", sub.Plan)
	}
	if sub.CanceledAt == nil {
		t.Error("canceled_at should be stamped")
	}
	if !sub.InGracePeriod(time.Now()) {
		t.Error("subscription should be in grace period right after cancel")
	}

	if _, err := f.svc.Cancel(context.Background(), "org-1"); !errors.Is(err, apperrors.ErrAlreadyCanceled) {
		t.Errorf("second cancel err = %v, want ErrAlreadyCanceled", err)
	}
}

func TestReactivateWithinGracePeriod(t *testing.T) {
	f := newBillingFixture()
	if _, err := f.svc.Upgrade(context.Background(), "org-1", "card-1"); err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), "org-1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	sub, err := f.svc.Reactivate(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if !sub.IsProActive() {
		t.Errorf("plan/status = %s/%s, want pro/active", sub.Plan, sub.Status)
	}
	if sub.CanceledAt != nil {
		t.Error("canceled_at should be cleared")
	}
}

func TestReactivateAfterNextBillingDateRejected(t *testing.T) {
	f := newBillingFixture()
	if _, err := f.svc.Upgrade(context.Background(), "org-1", "card-1"); err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), "org-1"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// 时间推进到下次扣款日之后
	f.svc.now = func() time.Time { return time.Now().AddDate(0, 2, 0) }

	_, err := f.svc.Reactivate(context.Background(), "org-1")
	if !errors.Is(err, apperrors.ErrCannotReactivate) {
		t.Fatalf("err = %v, want ErrCannotReactivate", err)
	}
}

func TestReactivateActiveSubscriptionRejected(t *testing.T) {
	f := newBillingFixture()
	if _, err := f.svc.Get(context.Background(), "org-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err := f.svc.Reactivate(context.Background(), "org-1")
	if !errors.Is(err, apperrors.ErrCannotReactivate) {
		t.Fatalf("err = %v, want ErrCannotReactivate", err)
	}
}

// 既有产品行为：解绑支付手段后配额计数被顶到 Free 上限，
// 即使本期一次都没用过，剩余额度也立即归零
func TestDeleteBillingKeyDowngradesWithZeroRemaining(t *testing.T) {
	f := newBillingFixture()
	if _, err := f.svc.Upgrade(context.Background(), "org-1", "card-1"); err != nil {
		t.Fatalf("Upgrade: %v", err)
	}

	sub, err := f.svc.DeleteBillingKey(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("DeleteBillingKey: %v", err)
	}
	if sub.Plan != entity.PlanFree || sub.Status != entity.SubscriptionStatusActive {
		t.Errorf("plan/status = %s/%s, want free/active", sub.Plan, sub.Status)
	}
	if sub.BillingKey != nil || sub.CustomerKey != nil || sub.NextBillingDate != nil {
		t.Error("billing credentials and schedule should be cleared")
	}
	if len(f.gateway.revoked) != 1 {
		t.Errorf("revoked = %v, want one key", f.gateway.revoked)
	}
	if len(f.payRepo.methods) != 0 {
		t.Errorf("payment methods should be deleted, got %v", f.payRepo.methods)
	}

	status, err := f.tracker.Check(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("quota Check: %v", err)
	}
	if status.Tier != entity.TierFree || status.Remaining != 0 {
		t.Errorf("quota tier/remaining = %s/%d, want free/0", status.Tier, status.Remaining)
	}
}

func TestDeleteBillingKeyWithoutKeyRejected(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.DeleteBillingKey(context.Background(), "org-1")
	if !errors.Is(err, apperrors.ErrNoBillingKey) {
		t.Fatalf("err = %v, want ErrNoBillingKey", err)
	}
}
