// Package quota 提供组织级生成配额的检查与推进
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/metrics"
)

// Status 配额检查结果
type Status struct {
	Allowed      bool        `json:"allowed"`
	Tier         entity.Tier `json:"tier"`
	CurrentCount int         `json:"current_count"`
	Limit        int         `json:"limit"`
	Remaining    int         `json:"remaining"`
}

// Tracker 配额跟踪器
// 层级上限的权威值来自配置，配额记录里只存缓存副本
type Tracker struct {
	quotaRepo repository.QuotaRepository
	cfg       *config.BillingConfig
	now       func() time.Time
}

// NewTracker 创建配额跟踪器
func NewTracker(quotaRepo repository.QuotaRepository, cfg *config.BillingConfig) *Tracker {
	return &Tracker{
		quotaRepo: quotaRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

// LimitFor 返回层级的月上限
func (t *Tracker) LimitFor(tier entity.Tier) int {
	if tier == entity.TierPro {
		return t.cfg.ProMonthlyGenerations
	}
	return t.cfg.FreeMonthlyGenerations
}

// Check 读取配额状态，记录不存在时按 Free 层级惰性创建
func (t *Tracker) Check(ctx context.Context, orgID string) (*Status, error) {
	record, err := t.ensure(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to check quota")
	}

	limit := t.LimitFor(record.Tier)
	remaining := limit - record.GenerationCount
	if remaining < 0 {
		remaining = 0
	}
	return &Status{
		Allowed:      record.GenerationCount < limit,
		Tier:         record.Tier,
		CurrentCount: record.GenerationCount,
		Limit:        limit,
		Remaining:    remaining,
	}, nil
}

// Increment 条件自增计数器
// 以读到的计数为前提做 CAS 更新；零行命中说明计数已被并发推进，
// 返回 ErrQuotaConflict，由调用方决定是否整体重试
func (t *Tracker) Increment(ctx context.Context, orgID string) (*Status, error) {
	record, err := t.ensure(ctx, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to read quota")
	}

	limit := t.LimitFor(record.Tier)
	if record.GenerationCount >= limit {
		metrics.QuotaRejectedTotal.WithLabelValues(string(record.Tier)).Inc()
		return nil, apperrors.QuotaExceeded(string(record.Tier), record.GenerationCount, limit)
	}

	won, err := t.quotaRepo.IncrementCount(ctx, orgID, record.GenerationCount)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to increment quota")
	}
	if !won {
		return nil, apperrors.ErrQuotaConflict
	}

	newCount := record.GenerationCount + 1
	remaining := limit - newCount
	if remaining < 0 {
		remaining = 0
	}
	return &Status{
		Allowed:      newCount < limit,
		Tier:         record.Tier,
		CurrentCount: newCount,
		Limit:        limit,
		Remaining:    remaining,
	}, nil
}

// Reset 清零计数并进入下一个账期（扣款成功路径）
func (t *Tracker) Reset(ctx context.Context, orgID string, periodStart, periodEnd time.Time) error {
	if err := t.quotaRepo.Reset(ctx, orgID, periodStart, periodEnd); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to reset quota")
	}
	return nil
}

// Upgrade 切到 Pro 层级并清零计数
func (t *Tracker) Upgrade(ctx context.Context, orgID string) error {
	if _, err := t.ensure(ctx, orgID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to read quota")
	}
	limit := t.LimitFor(entity.TierPro)
	if err := t.quotaRepo.SetTier(ctx, orgID, entity.TierPro, limit, 0); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to upgrade quota tier")
	}
	return nil
}

// DowngradeExhausted 降到 Free 层级且剩余额度立即归零
// 计数被顶到 Free 上限，沿用既有产品行为而不是重算 min(freeLimit, remaining)
func (t *Tracker) DowngradeExhausted(ctx context.Context, orgID string) error {
	if _, err := t.ensure(ctx, orgID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to read quota")
	}
	limit := t.LimitFor(entity.TierFree)
	if err := t.quotaRepo.SetTier(ctx, orgID, entity.TierFree, limit, limit); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to downgrade quota tier")
	}
	return nil
}

func (t *Tracker) ensure(ctx context.Context, orgID string) (*entity.GenerationQuota, error) {
	record, err := t.quotaRepo.GetByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	created := entity.NewGenerationQuota(orgID, t.LimitFor(entity.TierFree), t.now())
	if err := t.quotaRepo.Create(ctx, created); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			winner, getErr := t.quotaRepo.GetByOrganization(ctx, orgID)
			if getErr != nil {
				return nil, getErr
			}
			if winner == nil {
				return nil, fmt.Errorf("quota record vanished after duplicate insert: %s", orgID)
			}
			return winner, nil
		}
		return nil, err
	}
	return created, nil
}
