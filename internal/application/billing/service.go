// Package billing 提供订阅生命周期与周期扣款
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkpress-ai-api/internal/application/quota"
	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	"inkpress-ai-api/internal/infrastructure/payment"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
	"inkpress-ai-api/pkg/metrics"
)

// Gateway 支付网关端口
type Gateway interface {
	RegisterBillingKey(ctx context.Context, organizationID, paymentMethodID string) (*payment.BillingKey, error)
	Charge(ctx context.Context, customerKey, billingKey string, amountCents int64, description string) (*payment.ChargeResult, error)
	RevokeBillingKey(ctx context.Context, billingKey string) error
}

// Service 订阅服务
// 状态机：free/active -> pro/active -> pro/canceled（宽限期）-> pro/expired
type Service struct {
	subRepo     repository.SubscriptionRepository
	paymentRepo repository.PaymentRepository
	gateway     Gateway
	quota       *quota.Tracker
	cfg         *config.BillingConfig
	now         func() time.Time
}

// NewService 创建订阅服务
func NewService(
	subRepo repository.SubscriptionRepository,
	paymentRepo repository.PaymentRepository,
	gateway Gateway,
	quotaTracker *quota.Tracker,
	cfg *config.BillingConfig,
) *Service {
	return &Service{
		subRepo:     subRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		quota:       quotaTracker,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Get 获取组织订阅，不存在时按 Free 方案惰性创建
func (s *Service) Get(ctx context.Context, orgID string) (*entity.Subscription, error) {
	return s.ensure(ctx, orgID)
}

// Upgrade 升级到 Pro
// 先绑定支付手段再立即扣首期费用；扣款失败不落任何状态变更
func (s *Service) Upgrade(ctx context.Context, orgID, paymentMethodID string) (*entity.Subscription, error) {
	sub, err := s.ensure(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if sub.IsProActive() {
		return nil, apperrors.ErrAlreadyPro
	}

	key, err := s.gateway.RegisterBillingKey(ctx, orgID, paymentMethodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodePaymentGatewayError, "failed to register billing key")
	}

	result, err := s.gateway.Charge(ctx, key.CustomerKey, key.Key, s.cfg.ProPriceCents,
		fmt.Sprintf("pro subscription for organization %s", orgID))
	if err != nil {
		metrics.BillingChargeTotal.WithLabelValues("failed").Inc()
		var chargeErr *payment.ChargeError
		if errors.As(err, &chargeErr) {
			return nil, apperrors.PaymentFailed(chargeErr.Code, chargeErr.Message)
		}
		return nil, apperrors.Wrap(err, apperrors.CodePaymentGatewayError, "charge failed")
	}
	metrics.BillingChargeTotal.WithLabelValues("done").Inc()

	now := s.now()
	periodEnd := now.AddDate(0, 1, 0)
	sub.Plan = entity.PlanPro
	sub.Status = entity.SubscriptionStatusActive
	sub.BillingKey = &key.Key
	sub.CustomerKey = &key.CustomerKey
	sub.CurrentPeriodStart = &now
	sub.CurrentPeriodEnd = &periodEnd
	sub.NextBillingDate = &periodEnd
	sub.CanceledAt = nil

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist upgrade")
	}

	// 首期扣款流水与支付手段登记属于非关键副作用，失败只告警
	pay := entity.NewPayment(orgID, sub.ID, s.cfg.ProPriceCents, s.cfg.Currency, entity.PaymentStatusDone)
	pay.GatewayPaymentID = result.GatewayPaymentID
	if err := s.paymentRepo.CreatePayment(ctx, pay); err != nil {
		logger.Warn(ctx, "failed to record upgrade payment", "organization_id", orgID, "error", err)
	}
	method := entity.NewPaymentMethod(orgID, key.Key)
	method.CardBrand = key.CardBrand
	method.CardLast4 = key.CardLast4
	if err := s.paymentRepo.CreatePaymentMethod(ctx, method); err != nil {
		logger.Warn(ctx, "failed to record payment method", "organization_id", orgID, "error", err)
	}

	if err := s.quota.Upgrade(ctx, orgID); err != nil {
		logger.Warn(ctx, "failed to upgrade quota tier", "organization_id", orgID, "error", err)
	}
	return sub, nil
}

// Cancel 取消订阅
// 只改状态与取消时间，方案与账期保持不变，宽限期由读取方组合判断
func (s *Service) Cancel(ctx context.Context, orgID string) (*entity.Subscription, error) {
	sub, err := s.ensure(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if sub.Status == entity.SubscriptionStatusCanceled {
		return nil, apperrors.ErrAlreadyCanceled
	}

	now := s.now()
	sub.Status = entity.SubscriptionStatusCanceled
	sub.CanceledAt = &now
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist cancel")
	}
	return sub, nil
}

// Reactivate 在宽限期内恢复订阅
// 仅当 status=canceled 且当前时间早于下次扣款日时有效
func (s *Service) Reactivate(ctx context.Context, orgID string) (*entity.Subscription, error) {
	sub, err := s.ensure(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if sub.Status != entity.SubscriptionStatusCanceled {
		return nil, apperrors.ErrCannotReactivate
	}
	if sub.NextBillingDate == nil || !s.now().Before(*sub.NextBillingDate) {
		return nil, apperrors.ErrCannotReactivate
	}

	sub.Status = entity.SubscriptionStatusActive
	sub.CanceledAt = nil
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist reactivate")
	}
	return sub, nil
}

// DeleteBillingKey 解绑支付手段并立即降级
// 配额层级降到 Free 且剩余额度立即归零，沿用既有产品行为
func (s *Service) DeleteBillingKey(ctx context.Context, orgID string) (*entity.Subscription, error) {
	sub, err := s.ensure(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if sub.BillingKey == nil {
		return nil, apperrors.ErrNoBillingKey
	}

	if err := s.gateway.RevokeBillingKey(ctx, *sub.BillingKey); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodePaymentGatewayError, "failed to revoke billing key")
	}

	now := s.now()
	sub.Plan = entity.PlanFree
	sub.Status = entity.SubscriptionStatusActive
	sub.BillingKey = nil
	sub.CustomerKey = nil
	sub.NextBillingDate = nil
	sub.CanceledAt = &now
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist downgrade")
	}

	if err := s.paymentRepo.DeletePaymentMethods(ctx, orgID); err != nil {
		logger.Warn(ctx, "failed to delete payment methods", "organization_id", orgID, "error", err)
	}
	if err := s.quota.DowngradeExhausted(ctx, orgID); err != nil {
		logger.Warn(ctx, "failed to downgrade quota tier", "organization_id", orgID, "error", err)
	}
	return sub, nil
}

// ListPayments 按组织分页列出扣款流水
func (s *Service) ListPayments(ctx context.Context, orgID string, page repository.Pagination) (*repository.PagedResult[*entity.Payment], error) {
	result, err := s.paymentRepo.ListPayments(ctx, orgID, page)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list payments")
	}
	return result, nil
}

// ListPaymentMethods 列出组织的支付手段
func (s *Service) ListPaymentMethods(ctx context.Context, orgID string) ([]*entity.PaymentMethod, error) {
	methods, err := s.paymentRepo.ListPaymentMethods(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list payment methods")
	}
	return methods, nil
}

func (s *Service) ensure(ctx context.Context, orgID string) (*entity.Subscription, error) {
	sub, err := s.subRepo.GetByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get subscription")
	}
	if sub != nil {
		return sub, nil
	}

	created := entity.NewSubscription(orgID)
	if err := s.subRepo.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			winner, getErr := s.subRepo.GetByOrganization(ctx, orgID)
			if getErr != nil {
				return nil, apperrors.Wrap(getErr, apperrors.CodeDatabaseError, "failed to get subscription")
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create subscription")
	}
	return created, nil
}
