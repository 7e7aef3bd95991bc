// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
)

// KeywordSource 关键词来源
type KeywordSource string

const (
	KeywordSourceManual KeywordSource = "manual"
	KeywordSourceAI     KeywordSource = "ai"
)

// Keyword 归一化后的关键词，按归一化文本全局去重
type Keyword struct {
	ID             string        `json:"id" gorm:"primaryKey"`
	Text           string        `json:"text"`
	NormalizedText string        `json:"normalized_text" gorm:"uniqueIndex"`
	Source         KeywordSource `json:"source"`

	// SearchVolume 来自 SEO 数据提供商的月搜索量（可空）
	SearchVolume *int64 `json:"search_volume,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewKeyword 创建关键词
func NewKeyword(text, normalized string, source KeywordSource) *Keyword {
	return &Keyword{
		ID:             uuid.New().String(),
		Text:           text,
		NormalizedText: normalized,
		Source:         source,
		CreatedAt:      time.Now(),
	}
}
