// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Tone 文章语气
type Tone string

const (
	ToneProfessional   Tone = "professional"
	ToneCasual         Tone = "casual"
	ToneFriendly       Tone = "friendly"
	ToneAuthoritative  Tone = "authoritative"
	ToneConversational Tone = "conversational"
)

// ContentLength 文章篇幅
type ContentLength string

const (
	ContentLengthShort  ContentLength = "short"
	ContentLengthMedium ContentLength = "medium"
	ContentLengthLong   ContentLength = "long"
)

// ReadingLevel 阅读难度
type ReadingLevel string

const (
	ReadingLevelBeginner     ReadingLevel = "beginner"
	ReadingLevelIntermediate ReadingLevel = "intermediate"
	ReadingLevelAdvanced     ReadingLevel = "advanced"
)

// Language 文章语言
type Language string

const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"
)

// StyleGuide 品牌语调配置，作为提示词构建输入
type StyleGuide struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ProfileID string `json:"profile_id" gorm:"index"`

	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Personality     pq.StringArray `json:"personality,omitempty" gorm:"type:text[]"`
	Formality       string         `json:"formality,omitempty"`
	TargetAudience  string         `json:"target_audience,omitempty"`
	PainPoints      pq.StringArray `json:"pain_points,omitempty" gorm:"type:text[]"`
	Language        Language       `json:"language"`
	Tone            Tone           `json:"tone"`
	ContentLength   ContentLength  `json:"content_length"`
	ReadingLevel    ReadingLevel   `json:"reading_level"`
	AdditionalNotes string         `json:"additional_notes,omitempty"`

	// IsDefault 每个档案至多一条默认风格指南
	IsDefault bool `json:"is_default"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStyleGuide 创建新的风格指南
func NewStyleGuide(profileID, name string) *StyleGuide {
	now := time.Now()
	return &StyleGuide{
		ID:            uuid.New().String(),
		ProfileID:     profileID,
		Name:          name,
		Language:      LanguageKorean,
		Tone:          ToneProfessional,
		ContentLength: ContentLengthMedium,
		ReadingLevel:  ReadingLevelIntermediate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
