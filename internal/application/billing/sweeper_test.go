package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/infrastructure/payment"
	"inkpress-ai-api/pkg/metrics"
)

type stubGuard struct {
	acquireErr error
	denied     map[string]bool
	calls      int
}

func (g *stubGuard) Acquire(ctx context.Context, subscriptionID string, billingDate time.Time) (bool, error) {
	g.calls++
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	return !g.denied[subscriptionID], nil
}

func dueProSubscription(id, orgID string, due time.Time) *entity.Subscription {
	billingKey := "pm_" + id
	customerKey := "cus_" + orgID
	periodStart := due.AddDate(0, -1, 0)
	return &entity.Subscription{
		ID:                 id,
		OrganizationID:     orgID,
		Plan:               entity.PlanPro,
		Status:             entity.SubscriptionStatusActive,
		BillingKey:         &billingKey,
		CustomerKey:        &customerKey,
		CurrentPeriodStart: &periodStart,
		CurrentPeriodEnd:   &due,
		NextBillingDate:    &due,
	}
}

func TestRunChargesDueSubscriptions(t *testing.T) {
	f := newBillingFixture()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, sub := range []*entity.Subscription{
		dueProSubscription("sub-1", "org-1", due),
		dueProSubscription("sub-2", "org-2", due),
		dueProSubscription("sub-3", "org-3", due),
	} {
		f.subRepo.byOrg[sub.OrganizationID] = sub
		f.subRepo.due = append(f.subRepo.due, sub)
	}
	f.gateway.declineKeys = map[string]error{
		"pm_sub-3": &payment.ChargeError{Code: "card_declined", Message: "insufficient funds"},
	}

	sweeper := NewSweeper(f.svc, &stubGuard{})
	result, err := sweeper.Run(context.Background(), due)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 3 || result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("result = %+v, want processed 3 succeeded 2 failed 1", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].SubscriptionID != "sub-3" {
		t.Fatalf("errors = %+v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "insufficient funds") {
		t.Errorf("error message = %q, want gateway decline reason", result.Errors[0].Message)
	}
}

func TestRunSuccessAdvancesPeriodAndResetsQuota(t *testing.T) {
	f := newBillingFixture()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := dueProSubscription("sub-1", "org-1", due)
	f.subRepo.byOrg["org-1"] = sub
	f.subRepo.due = []*entity.Subscription{sub}
	f.quotas.records["org-1"] = &entity.GenerationQuota{
		OrganizationID:  "org-1",
		Tier:            entity.TierPro,
		MonthlyLimit:    100,
		GenerationCount: 87,
	}

	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	sweeper := NewSweeper(f.svc, &stubGuard{})
	sweeper.now = func() time.Time { return now }

	if _, err := sweeper.Run(context.Background(), due); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sub.NextBillingDate == nil || !sub.NextBillingDate.Equal(now.AddDate(0, 1, 0)) {
		t.Errorf("next billing date = %v, want %v", sub.NextBillingDate, now.AddDate(0, 1, 0))
	}
	if len(f.payRepo.payments) != 1 || f.payRepo.payments[0].Status != entity.PaymentStatusDone {
		t.Errorf("payments = %+v, want one done record", f.payRepo.payments)
	}
	if record := f.quotas.records["org-1"]; record.GenerationCount != 0 {
		t.Errorf("generation count = %d, renewal should reset quota", record.GenerationCount)
	}
}

func TestRunDeclineExpiresSubscription(t *testing.T) {
	f := newBillingFixture()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := dueProSubscription("sub-1", "org-1", due)
	f.subRepo.byOrg["org-1"] = sub
	f.subRepo.due = []*entity.Subscription{sub}
	f.gateway.declineKeys = map[string]error{
		"pm_sub-1": &payment.ChargeError{Code: "expired_card", Message: "card expired"},
	}

	sweeper := NewSweeper(f.svc, &stubGuard{})
	if _, err := sweeper.Run(context.Background(), due); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sub.Status != entity.SubscriptionStatusExpired {
		t.Errorf("status = %s, want expired", sub.Status)
	}
	if sub.BillingKey != nil {
		t.Error("billing key should be cleared on expiry")
	}
	if len(f.payRepo.payments) != 1 {
		t.Fatalf("payments = %+v, want one failed record", f.payRepo.payments)
	}
	pay := f.payRepo.payments[0]
	if pay.Status != entity.PaymentStatusFailed || pay.FailureCode != "expired_card" {
		t.Errorf("payment = %+v, want failed with gateway code", pay)
	}
	if record := f.quotas.records["org-1"]; record == nil || record.Tier != entity.TierFree {
		t.Errorf("quota after expiry = %+v, want free tier", record)
	}
}

func TestRunGuardDeniedSkipsSubscription(t *testing.T) {
	f := newBillingFixture()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := dueProSubscription("sub-1", "org-1", due)
	f.subRepo.byOrg["org-1"] = sub
	f.subRepo.due = []*entity.Subscription{sub}

	sweeper := NewSweeper(f.svc, &stubGuard{denied: map[string]bool{"sub-1": true}})
	result, err := sweeper.Run(context.Background(), due)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 0 || result.Skipped != 1 {
		t.Errorf("result = %+v, want processed 0 skipped 1", result)
	}
	if f.gateway.chargeCalls != 0 {
		t.Errorf("charge calls = %d, guard denial must prevent charging", f.gateway.chargeCalls)
	}
}

func TestRunRefreshesSubscriptionGauge(t *testing.T) {
	f := newBillingFixture()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := dueProSubscription("sub-1", "org-1", due)
	f.subRepo.byOrg["org-1"] = sub
	f.subRepo.byOrg["org-2"] = entity.NewSubscription("org-2")
	f.subRepo.due = []*entity.Subscription{sub}

	sweeper := NewSweeper(f.svc, &stubGuard{})
	if _, err := sweeper.Run(context.Background(), due); err != nil {
		t.Fatalf("Run: %v", err)
	}

	pro := testutil.ToFloat64(metrics.SubscriptionsByPlan.WithLabelValues("pro", "active"))
	free := testutil.ToFloat64(metrics.SubscriptionsByPlan.WithLabelValues("free", "active"))
	if pro != 1 || free != 1 {
		t.Errorf("gauge pro/free = %v/%v, want 1/1", pro, free)
	}
}

func TestRunIgnoresNonProSubscriptions(t *testing.T) {
	f := newBillingFixture()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	free := entity.NewSubscription("org-free")
	f.subRepo.due = []*entity.Subscription{free}

	guard := &stubGuard{}
	sweeper := NewSweeper(f.svc, guard)
	result, err := sweeper.Run(context.Background(), due)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 0 || guard.calls != 0 {
		t.Errorf("result = %+v guard calls = %d, free plans must be ignored", result, guard.calls)
	}
}
