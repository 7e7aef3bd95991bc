// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ArticleStatus 文章状态
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// Article 博客文章（草稿或已发布）
type Article struct {
	ID        string `json:"id" gorm:"primaryKey"`
	ProfileID string `json:"profile_id" gorm:"index"`

	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Keywords    pq.StringArray `json:"keywords" gorm:"type:text[]"`
	Description string         `json:"description,omitempty"`
	Content     string         `json:"content"`

	// StyleGuideID 生成时引用的风格指南（可空）
	StyleGuideID *string `json:"style_guide_id,omitempty"`

	// 生成时的语调/篇幅/难度快照
	Tone          Tone          `json:"tone,omitempty"`
	ContentLength ContentLength `json:"content_length,omitempty"`
	ReadingLevel  ReadingLevel  `json:"reading_level,omitempty"`

	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`

	Status ArticleStatus `json:"status" gorm:"index"`

	// PublishedAt 首次发布时间；重复发布不重写
	PublishedAt *time.Time `json:"published_at,omitempty"`

	ViewCount        int64 `json:"view_count"`
	TimeSpentSeconds int64 `json:"time_spent_seconds"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewArticle 创建新草稿
func NewArticle(profileID, title, slug string) *Article {
	now := time.Now()
	return &Article{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Title:     title,
		Slug:      slug,
		Status:    ArticleStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsPublished 检查文章是否已发布
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}
