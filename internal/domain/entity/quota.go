// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tier 订阅层级，决定每月生成次数上限
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// GenerationQuota 组织级别的每月 AI 生成配额记录
// 不变式：generation_count <= monthly_limit 在每次生成前校验
type GenerationQuota struct {
	ID             string `json:"id" gorm:"primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"uniqueIndex"`

	Tier Tier `json:"tier"`

	// MonthlyLimit 层级上限的缓存副本，权威值来自配置
	MonthlyLimit    int `json:"monthly_limit"`
	GenerationCount int `json:"generation_count"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGenerationQuota 为组织创建 Free 层级配额记录
func NewGenerationQuota(orgID string, limit int, now time.Time) *GenerationQuota {
	return &GenerationQuota{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Tier:           TierFree,
		MonthlyLimit:   limit,
		PeriodStart:    now,
		PeriodEnd:      now.AddDate(0, 1, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Remaining 剩余可用次数
func (q *GenerationQuota) Remaining() int {
	r := q.MonthlyLimit - q.GenerationCount
	if r < 0 {
		return 0
	}
	return r
}

// Allowed 是否还允许新的生成
func (q *GenerationQuota) Allowed() bool {
	return q.GenerationCount < q.MonthlyLimit
}
