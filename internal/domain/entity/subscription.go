// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Plan 订阅方案
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// SubscriptionStatus 订阅状态
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusPending  SubscriptionStatus = "pending"
)

// Subscription 组织的计费状态
// 状态机：free/active -> pro/active -> pro/canceled（宽限期）-> pro/expired（扣款失败）
type Subscription struct {
	ID             string `json:"id" gorm:"primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"uniqueIndex"`

	Plan   Plan               `json:"plan"`
	Status SubscriptionStatus `json:"status" gorm:"index"`

	// BillingKey 支付网关侧存储的支付手段引用
	BillingKey  *string `json:"billing_key,omitempty"`
	CustomerKey *string `json:"customer_key,omitempty"`

	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	NextBillingDate    *time.Time `json:"next_billing_date,omitempty" gorm:"index"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubscription 为组织创建 Free 订阅
func NewSubscription(orgID string) *Subscription {
	now := time.Now()
	return &Subscription{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Plan:           PlanFree,
		Status:         SubscriptionStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsProActive 是否为生效中的 Pro 订阅
func (s *Subscription) IsProActive() bool {
	return s.Plan == PlanPro && s.Status == SubscriptionStatusActive
}

// InGracePeriod 是否处于取消后的宽限期（仍可访问 Pro 功能）
func (s *Subscription) InGracePeriod(now time.Time) bool {
	return s.Plan == PlanPro &&
		s.Status == SubscriptionStatusCanceled &&
		s.CurrentPeriodEnd != nil &&
		now.Before(*s.CurrentPeriodEnd)
}

// PaymentStatus 支付流水状态
type PaymentStatus string

const (
	PaymentStatusDone     PaymentStatus = "done"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusCanceled PaymentStatus = "canceled"
)

// Payment 单笔扣款记录，只追加不修改
type Payment struct {
	ID             string `json:"id" gorm:"primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"index"`
	SubscriptionID string `json:"subscription_id" gorm:"index"`

	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`

	// GatewayPaymentID 网关侧交易 ID
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
	FailureCode      string `json:"failure_code,omitempty"`
	FailureMessage   string `json:"failure_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewPayment 创建支付流水
func NewPayment(orgID, subscriptionID string, amountCents int64, currency string, status PaymentStatus) *Payment {
	return &Payment{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		SubscriptionID: subscriptionID,
		AmountCents:    amountCents,
		Currency:       currency,
		Status:         status,
		CreatedAt:      time.Now(),
	}
}

// PaymentMethod 存储的支付手段，同一组织至多一条 primary
type PaymentMethod struct {
	ID             string `json:"id" gorm:"primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"index"`

	BillingKey string `json:"billing_key"`
	CardBrand  string `json:"card_brand,omitempty"`
	CardLast4  string `json:"card_last4,omitempty"`
	IsPrimary  bool   `json:"is_primary"`

	CreatedAt time.Time `json:"created_at"`
}

// NewPaymentMethod 创建支付手段记录
func NewPaymentMethod(orgID, billingKey string) *PaymentMethod {
	return &PaymentMethod{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		BillingKey:     billingKey,
		IsPrimary:      true,
		CreatedAt:      time.Now(),
	}
}
