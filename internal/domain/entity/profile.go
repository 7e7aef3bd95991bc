// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile 内部用户档案，与外部身份提供商账号 1:1
type Profile struct {
	ID         string  `json:"id" gorm:"primaryKey"`
	ExternalID string  `json:"external_id" gorm:"uniqueIndex"`
	Email      *string `json:"email,omitempty"`
	Name       *string `json:"name,omitempty"`
	ImageURL   *string `json:"image_url,omitempty"`

	// OnboardingCompleted 是否已完成引导流程
	OnboardingCompleted bool `json:"onboarding_completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile 根据外部身份 ID 创建档案
func NewProfile(externalID string) *Profile {
	now := time.Now()
	return &Profile{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
