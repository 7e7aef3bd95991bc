package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
)

// SubscriptionRepository 订阅仓储实现
type SubscriptionRepository struct {
	client *Client
}

// NewSubscriptionRepository 创建订阅仓储
func NewSubscriptionRepository(client *Client) *SubscriptionRepository {
	return &SubscriptionRepository{client: client}
}

// Create 创建订阅
func (r *SubscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	ctx, span := tracer.Start(ctx, "postgres.SubscriptionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateKey
		}
		span.RecordError(err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetByOrganization 按组织获取订阅
func (r *SubscriptionRepository) GetByOrganization(ctx context.Context, organizationID string) (*entity.Subscription, error) {
	ctx, span := tracer.Start(ctx, "postgres.SubscriptionRepository.GetByOrganization")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var sub entity.Subscription
	if err := db.First(&sub, "organization_id = ?", organizationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// Update 更新订阅
func (r *SubscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	ctx, span := tracer.Start(ctx, "postgres.SubscriptionRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	sub.UpdatedAt = time.Now()
	if err := db.Save(sub).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

// ListDueForBilling 列出指定日期应扣款的活跃订阅
func (r *SubscriptionRepository) ListDueForBilling(ctx context.Context, billingDate time.Time) ([]*entity.Subscription, error) {
	ctx, span := tracer.Start(ctx, "postgres.SubscriptionRepository.ListDueForBilling")
	defer span.End()

	dayStart := time.Date(billingDate.Year(), billingDate.Month(), billingDate.Day(), 0, 0, 0, 0, billingDate.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	db := getDB(ctx, r.client.db)
	var subs []*entity.Subscription
	if err := db.
		Where("status = ? AND next_billing_date >= ? AND next_billing_date < ?",
			entity.SubscriptionStatusActive, dayStart, dayEnd).
		Order("next_billing_date ASC").
		Find(&subs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}
	return subs, nil
}

// TallyByPlanStatus 按方案与状态分组统计订阅数量
func (r *SubscriptionRepository) TallyByPlanStatus(ctx context.Context) ([]repository.SubscriptionTally, error) {
	ctx, span := tracer.Start(ctx, "postgres.SubscriptionRepository.TallyByPlanStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var tallies []repository.SubscriptionTally
	if err := db.Model(&entity.Subscription{}).
		Select("plan, status, COUNT(*) AS count").
		Group("plan, status").
		Scan(&tallies).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to tally subscriptions: %w", err)
	}
	return tallies, nil
}

// PaymentRepository 支付记录与支付方式仓储实现
type PaymentRepository struct {
	client *Client
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(client *Client) *PaymentRepository {
	return &PaymentRepository{client: client}
}

// CreatePayment 追加一条支付记录（只增不改）
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *entity.Payment) error {
	ctx, span := tracer.Start(ctx, "postgres.PaymentRepository.CreatePayment")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(payment).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// ListPayments 按组织分页列出支付记录
func (r *PaymentRepository) ListPayments(ctx context.Context, organizationID string, page repository.Pagination) (*repository.PagedResult[*entity.Payment], error) {
	ctx, span := tracer.Start(ctx, "postgres.PaymentRepository.ListPayments")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Payment{}).Where("organization_id = ?", organizationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var payments []*entity.Payment
	if err := query.
		Order("created_at DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&payments).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &repository.PagedResult[*entity.Payment]{
		Items:  payments,
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	}, nil
}

// CreatePaymentMethod 保存支付方式
func (r *PaymentRepository) CreatePaymentMethod(ctx context.Context, method *entity.PaymentMethod) error {
	ctx, span := tracer.Start(ctx, "postgres.PaymentRepository.CreatePaymentMethod")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if method.IsPrimary {
		// 新 primary 要先清除旧 primary 标记
		if err := db.Model(&entity.PaymentMethod{}).
			Where("organization_id = ? AND is_primary = true", method.OrganizationID).
			Update("is_primary", false).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to clear primary payment method: %w", err)
		}
	}
	if err := db.Create(method).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

// ListPaymentMethods 列出组织的支付方式
func (r *PaymentRepository) ListPaymentMethods(ctx context.Context, organizationID string) ([]*entity.PaymentMethod, error) {
	ctx, span := tracer.Start(ctx, "postgres.PaymentRepository.ListPaymentMethods")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var methods []*entity.PaymentMethod
	if err := db.Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&methods).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

// DeletePaymentMethods 删除组织的全部支付方式
func (r *PaymentRepository) DeletePaymentMethods(ctx context.Context, organizationID string) error {
	ctx, span := tracer.Start(ctx, "postgres.PaymentRepository.DeletePaymentMethods")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.PaymentMethod{}, "organization_id = ?", organizationID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete payment methods: %w", err)
	}
	return nil
}
