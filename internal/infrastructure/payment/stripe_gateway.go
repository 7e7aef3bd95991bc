// Package payment 提供 Stripe 支付网关实现
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/paymentmethod"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"inkpress-ai-api/internal/config"
)

var tracer = otel.Tracer("payment")

// ChargeError 网关拒付错误，携带网关侧错误码与描述
type ChargeError struct {
	Code    string
	Message string
}

func (e *ChargeError) Error() string {
	return fmt.Sprintf("charge declined: %s (%s)", e.Message, e.Code)
}

// ChargeResult 扣款结果
type ChargeResult struct {
	// GatewayPaymentID 网关侧支付单号
	GatewayPaymentID string
}

// BillingKey 已保存的扣款凭据
type BillingKey struct {
	// CustomerKey 网关侧客户标识
	CustomerKey string
	// Key 网关侧支付方式标识
	Key       string
	CardBrand string
	CardLast4 string
}

// StripeGateway Stripe 支付网关
type StripeGateway struct {
	cfg *config.BillingConfig
}

// NewStripeGateway 创建 Stripe 网关并注入 API 密钥
func NewStripeGateway(cfg *config.BillingConfig) *StripeGateway {
	stripe.Key = cfg.StripeSecretKey
	return &StripeGateway{cfg: cfg}
}

// RegisterBillingKey 为组织创建网关客户并绑定支付方式
func (g *StripeGateway) RegisterBillingKey(ctx context.Context, organizationID, paymentMethodID string) (*BillingKey, error) {
	ctx, span := tracer.Start(ctx, "payment.RegisterBillingKey")
	span.SetAttributes(attribute.String("organization.id", organizationID))
	defer span.End()

	cust, err := customer.New(&stripe.CustomerParams{
		Metadata: map[string]string{
			"organization_id": organizationID,
		},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	pm, err := paymentmethod.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(cust.ID),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to attach payment method: %w", err)
	}

	key := &BillingKey{
		CustomerKey: cust.ID,
		Key:         pm.ID,
	}
	if pm.Card != nil {
		key.CardBrand = string(pm.Card.Brand)
		key.CardLast4 = pm.Card.Last4
	}
	return key, nil
}

// Charge 用已保存的支付方式发起离线扣款
func (g *StripeGateway) Charge(ctx context.Context, customerKey, billingKey string, amountCents int64, description string) (*ChargeResult, error) {
	ctx, span := tracer.Start(ctx, "payment.Charge")
	span.SetAttributes(
		attribute.String("payment.customer_key", customerKey),
		attribute.Int64("payment.amount_cents", amountCents),
	)
	defer span.End()

	pi, err := paymentintent.New(&stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(g.cfg.Currency),
		Customer:      stripe.String(customerKey),
		PaymentMethod: stripe.String(billingKey),
		Description:   stripe.String(description),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	})
	if err != nil {
		span.RecordError(err)
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &ChargeError{
				Code:    string(stripeErr.Code),
				Message: stripeErr.Msg,
			}
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, &ChargeError{
			Code:    string(pi.Status),
			Message: "payment intent did not succeed",
		}
	}

	return &ChargeResult{GatewayPaymentID: pi.ID}, nil
}

// RevokeBillingKey 解绑支付方式
func (g *StripeGateway) RevokeBillingKey(ctx context.Context, billingKey string) error {
	ctx, span := tracer.Start(ctx, "payment.RevokeBillingKey")
	defer span.End()

	if _, err := paymentmethod.Detach(billingKey, &stripe.PaymentMethodDetachParams{}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to detach payment method: %w", err)
	}
	return nil
}
