package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/infrastructure/payment"
	"inkpress-ai-api/pkg/logger"
	"inkpress-ai-api/pkg/metrics"
)

// IdempotencyGuard 扣款幂等守卫端口
// 同一订阅在同一账单日只允许一次扣款尝试
type IdempotencyGuard interface {
	Acquire(ctx context.Context, subscriptionID string, billingDate time.Time) (bool, error)
}

// SweepError 单个订阅的扣款失败明细
type SweepError struct {
	SubscriptionID string `json:"subscription_id"`
	OrganizationID string `json:"organization_id"`
	Message        string `json:"message"`
}

// SweepResult 扫描结果汇总
type SweepResult struct {
	Processed int          `json:"processed"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Skipped   int          `json:"skipped"`
	Errors    []SweepError `json:"errors,omitempty"`
}

// Sweeper 周期扣款批处理
// 逐个处理到期订阅，单条失败不中断整批；expired 状态只会从这里进入
type Sweeper struct {
	svc   *Service
	guard IdempotencyGuard
	now   func() time.Time
}

// NewSweeper 创建扣款批处理
func NewSweeper(svc *Service, guard IdempotencyGuard) *Sweeper {
	return &Sweeper{
		svc:   svc,
		guard: guard,
		now:   time.Now,
	}
}

// Run 对账单日到期的全部 pro/active 订阅尝试扣款
func (w *Sweeper) Run(ctx context.Context, billingDate time.Time) (*SweepResult, error) {
	start := w.now()
	defer func() {
		metrics.BillingSweepDuration.Observe(w.now().Sub(start).Seconds())
	}()

	due, err := w.svc.subRepo.ListDueForBilling(ctx, billingDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}

	result := &SweepResult{}
	for _, sub := range due {
		if sub.Plan != entity.PlanPro {
			continue
		}
		result.Processed++

		if w.guard != nil {
			acquired, err := w.guard.Acquire(ctx, sub.ID, billingDate)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, SweepError{
					SubscriptionID: sub.ID,
					OrganizationID: sub.OrganizationID,
					Message:        fmt.Sprintf("idempotency guard: %v", err),
				})
				continue
			}
			if !acquired {
				// 已被本日另一次运行处理过
				result.Processed--
				result.Skipped++
				continue
			}
		}

		if err := w.chargeOne(ctx, sub); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, SweepError{
				SubscriptionID: sub.ID,
				OrganizationID: sub.OrganizationID,
				Message:        err.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	w.refreshSubscriptionGauge(ctx)

	logger.Info(ctx, "billing sweep finished",
		"billing_date", billingDate.Format("2006-01-02"),
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return result, nil
}

// refreshSubscriptionGauge 扫描后刷新按方案/状态的订阅存量指标
func (w *Sweeper) refreshSubscriptionGauge(ctx context.Context) {
	tallies, err := w.svc.subRepo.TallyByPlanStatus(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to tally subscriptions for metrics", "error", err)
		return
	}
	metrics.SubscriptionsByPlan.Reset()
	for _, t := range tallies {
		metrics.SubscriptionsByPlan.WithLabelValues(string(t.Plan), string(t.Status)).Set(float64(t.Count))
	}
}

// chargeOne 处理单个订阅的周期扣款
// 成功：记 done 流水、清零配额进入新账期、顺延下次扣款日
// 失败：记 failed 流水、状态置 expired、清除扣款凭据、配额降到 Free 且剩余归零
func (w *Sweeper) chargeOne(ctx context.Context, sub *entity.Subscription) error {
	if sub.BillingKey == nil || sub.CustomerKey == nil {
		w.expire(ctx, sub, "missing", "no billing key on record")
		return fmt.Errorf("subscription %s has no billing key", sub.ID)
	}

	chargeResult, err := w.svc.gateway.Charge(ctx, *sub.CustomerKey, *sub.BillingKey,
		w.svc.cfg.ProPriceCents, fmt.Sprintf("pro subscription renewal for organization %s", sub.OrganizationID))
	if err != nil {
		metrics.BillingChargeTotal.WithLabelValues("failed").Inc()
		code, message := "gateway_error", err.Error()
		var chargeErr *payment.ChargeError
		if errors.As(err, &chargeErr) {
			code, message = chargeErr.Code, chargeErr.Message
		}
		w.expire(ctx, sub, code, message)
		return fmt.Errorf("charge declined: %s", message)
	}
	metrics.BillingChargeTotal.WithLabelValues("done").Inc()

	now := w.now()
	periodEnd := now.AddDate(0, 1, 0)

	pay := entity.NewPayment(sub.OrganizationID, sub.ID, w.svc.cfg.ProPriceCents, w.svc.cfg.Currency, entity.PaymentStatusDone)
	pay.GatewayPaymentID = chargeResult.GatewayPaymentID
	if err := w.svc.paymentRepo.CreatePayment(ctx, pay); err != nil {
		logger.Warn(ctx, "failed to record renewal payment", "subscription_id", sub.ID, "error", err)
	}

	sub.CurrentPeriodStart = &now
	sub.CurrentPeriodEnd = &periodEnd
	sub.NextBillingDate = &periodEnd
	if err := w.svc.subRepo.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to advance billing period: %w", err)
	}

	if err := w.svc.quota.Reset(ctx, sub.OrganizationID, now, periodEnd); err != nil {
		logger.Warn(ctx, "failed to reset quota after renewal", "organization_id", sub.OrganizationID, "error", err)
	}
	return nil
}

// expire 扣款失败的收尾：记流水、置 expired、清凭据、降级配额
func (w *Sweeper) expire(ctx context.Context, sub *entity.Subscription, code, message string) {
	pay := entity.NewPayment(sub.OrganizationID, sub.ID, w.svc.cfg.ProPriceCents, w.svc.cfg.Currency, entity.PaymentStatusFailed)
	pay.FailureCode = code
	pay.FailureMessage = message
	if err := w.svc.paymentRepo.CreatePayment(ctx, pay); err != nil {
		logger.Warn(ctx, "failed to record failed payment", "subscription_id", sub.ID, "error", err)
	}

	sub.Status = entity.SubscriptionStatusExpired
	sub.BillingKey = nil
	if err := w.svc.subRepo.Update(ctx, sub); err != nil {
		logger.Error(ctx, "failed to persist expired subscription", err, "subscription_id", sub.ID)
		return
	}

	if err := w.svc.quota.DowngradeExhausted(ctx, sub.OrganizationID); err != nil {
		logger.Warn(ctx, "failed to downgrade quota after expiry", "organization_id", sub.OrganizationID, "error", err)
	}
}
