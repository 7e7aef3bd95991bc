package dto

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
)

// PageQuery 分页查询参数
type PageQuery struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

// Pagination 解析并规范化分页参数
func (q *PageQuery) Pagination() repository.Pagination {
	return repository.NewPagination(q.Offset, q.Limit)
}

// BindPagination 从查询串解析分页参数，解析失败时回退默认值
func BindPagination(c *gin.Context) repository.Pagination {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return repository.NewPagination(0, 20)
	}
	return q.Pagination()
}

// ArticleListQuery 文章列表查询参数
type ArticleListQuery struct {
	PageQuery
	Status    string `form:"status"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// CreateArticleRequest 手动创建草稿请求
type CreateArticleRequest struct {
	Title           string   `json:"title" binding:"required"`
	Slug            string   `json:"slug"`
	Keywords        []string `json:"keywords"`
	Description     string   `json:"description"`
	Content         string   `json:"content"`
	StyleGuideID    *string  `json:"style_guide_id"`
	Tone            string   `json:"tone"`
	ContentLength   string   `json:"content_length"`
	ReadingLevel    string   `json:"reading_level"`
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
}

// UpdateArticleRequest 部分更新文章请求，缺省字段不改动
type UpdateArticleRequest struct {
	Title           *string   `json:"title"`
	Slug            *string   `json:"slug"`
	Keywords        *[]string `json:"keywords"`
	Description     *string   `json:"description"`
	Content         *string   `json:"content"`
	StyleGuideID    *string   `json:"style_guide_id"`
	Tone            *string   `json:"tone"`
	ContentLength   *string   `json:"content_length"`
	ReadingLevel    *string   `json:"reading_level"`
	MetaTitle       *string   `json:"meta_title"`
	MetaDescription *string   `json:"meta_description"`
	Status          *string   `json:"status"`
}

// GenerateArticleRequest 文章生成请求
type GenerateArticleRequest struct {
	Topic                  string   `json:"topic" binding:"required"`
	StyleGuideID           string   `json:"style_guide_id"`
	Keywords               []string `json:"keywords"`
	AdditionalInstructions string   `json:"additional_instructions"`
}

// CreateStyleGuideRequest 创建风格指南请求
type CreateStyleGuideRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Personality    []string `json:"personality"`
	Formality      string   `json:"formality"`
	TargetAudience string   `json:"target_audience"`
	PainPoints     []string `json:"pain_points"`
	Language       string   `json:"language"`
	Tone           string   `json:"tone"`
	ContentLength  string   `json:"content_length"`
	ReadingLevel   string   `json:"reading_level"`
	Notes          string   `json:"additional_notes"`
	IsDefault      bool     `json:"is_default"`
}

// UpdateStyleGuideRequest 更新风格指南请求，缺省字段不改动
type UpdateStyleGuideRequest struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Personality    *[]string `json:"personality"`
	Formality      *string   `json:"formality"`
	TargetAudience *string   `json:"target_audience"`
	PainPoints     *[]string `json:"pain_points"`
	Language       *string   `json:"language"`
	Tone           *string   `json:"tone"`
	ContentLength  *string   `json:"content_length"`
	ReadingLevel   *string   `json:"reading_level"`
	Notes          *string   `json:"additional_notes"`
	IsDefault      *bool     `json:"is_default"`
}

// CreateOrganizationRequest 创建组织请求
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateOrganizationRequest 更新组织请求
type UpdateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// AddMemberRequest 添加成员请求
type AddMemberRequest struct {
	ProfileID string `json:"profile_id" binding:"required"`
	Role      string `json:"role"`
}

// MemberRole 解析成员角色，缺省为普通成员
func (r *AddMemberRequest) MemberRole() entity.MemberRole {
	if r.Role == string(entity.MemberRoleOwner) {
		return entity.MemberRoleOwner
	}
	return entity.MemberRoleMember
}

// UpgradeSubscriptionRequest 升级 Pro 请求
type UpgradeSubscriptionRequest struct {
	OrganizationID  string `json:"organization_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

// SubscriptionActionRequest 指定组织的订阅操作请求（取消/恢复）
type SubscriptionActionRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
}

// AddKeywordRequest 添加关键词请求
type AddKeywordRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddKeywordsBulkRequest 批量添加关键词请求
type AddKeywordsBulkRequest struct {
	Texts []string `json:"texts" binding:"required,min=1"`
}

// KeywordSuggestRequest 关键词建议请求
type KeywordSuggestRequest struct {
	Topic string `json:"topic" binding:"required"`
	Count int    `json:"count"`
}

// KeywordLongTailRequest 长尾关键词请求
type KeywordLongTailRequest struct {
	Seed  string `json:"seed" binding:"required"`
	Count int    `json:"count"`
}

// IdentityWebhookRequest 身份平台 Webhook 载荷
type IdentityWebhookRequest struct {
	Type string `json:"type"`
	Data struct {
		ExternalID string  `json:"external_id"`
		Email      *string `json:"email"`
		Name       *string `json:"name"`
		Image      *string `json:"image"`
	} `json:"data"`
}
