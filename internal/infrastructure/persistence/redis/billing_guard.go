package redis

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// BillingGuard 扣款幂等守卫
// 同一订阅在同一账单日只允许一次扣款尝试，依赖 SETNX 抢占标记
type BillingGuard struct {
	client *Client
	ttl    time.Duration
}

// NewBillingGuard 创建扣款幂等守卫
func NewBillingGuard(client *Client) *BillingGuard {
	return &BillingGuard{
		client: client,
		// 标记保留 48 小时，覆盖跨日重跑
		ttl: 48 * time.Hour,
	}
}

// Acquire 抢占 (订阅, 账单日) 的扣款标记，返回是否抢占成功
func (g *BillingGuard) Acquire(ctx context.Context, subscriptionID string, billingDate time.Time) (bool, error) {
	key := buildBillingKey(subscriptionID, billingDate)

	ctx, span := tracer.Start(ctx, "billing.guard.Acquire")
	span.SetAttributes(attribute.String("billing.key", key))
	defer span.End()

	ok, err := g.client.SetNX(ctx, key, 1, g.ttl)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to acquire billing guard: %w", err)
	}
	span.SetAttributes(attribute.Bool("billing.acquired", ok))
	return ok, nil
}

func buildBillingKey(subscriptionID string, billingDate time.Time) string {
	return fmt.Sprintf("billing:charge:%s:%s", subscriptionID, billingDate.Format("2006-01-02"))
}
