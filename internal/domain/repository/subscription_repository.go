// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"inkpress-ai-api/internal/domain/entity"
)

// SubscriptionRepository 订阅仓储接口
type SubscriptionRepository interface {
	// Create 创建订阅；组织冲突时返回 ErrDuplicateKey
	Create(ctx context.Context, sub *entity.Subscription) error

	// GetByOrganization 根据组织 ID 获取订阅
	GetByOrganization(ctx context.Context, orgID string) (*entity.Subscription, error)

	// Update 更新订阅
	Update(ctx context.Context, sub *entity.Subscription) error

	// ListDueForBilling 列出应在 billingDate 当天扣款的 pro/active 订阅
	ListDueForBilling(ctx context.Context, billingDate time.Time) ([]*entity.Subscription, error)

	// TallyByPlanStatus 按方案与状态统计订阅数量
	TallyByPlanStatus(ctx context.Context) ([]SubscriptionTally, error)
}

// SubscriptionTally 按方案与状态分组的订阅计数
type SubscriptionTally struct {
	Plan   entity.Plan
	Status entity.SubscriptionStatus
	Count  int64
}

// PaymentRepository 支付流水与支付手段仓储接口
type PaymentRepository interface {
	// CreatePayment 追加支付流水
	CreatePayment(ctx context.Context, payment *entity.Payment) error

	// ListPayments 按组织列出支付流水（按创建时间倒序）
	ListPayments(ctx context.Context, orgID string, pagination Pagination) (*PagedResult[*entity.Payment], error)

	// CreatePaymentMethod 创建支付手段；新 primary 会清除旧 primary 标记
	CreatePaymentMethod(ctx context.Context, method *entity.PaymentMethod) error

	// ListPaymentMethods 按组织列出支付手段
	ListPaymentMethods(ctx context.Context, orgID string) ([]*entity.PaymentMethod, error)

	// DeletePaymentMethods 删除组织的全部支付手段（立即降级路径）
	DeletePaymentMethods(ctx context.Context, orgID string) error
}
