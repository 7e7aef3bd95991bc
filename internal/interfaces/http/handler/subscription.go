package handler

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/billing"
	"inkpress-ai-api/internal/application/organization"
	"inkpress-ai-api/internal/interfaces/http/dto"
)

// SubscriptionHandler 订阅与计费处理器
// 读操作要求组织成员身份，计费变更要求 owner 身份
type SubscriptionHandler struct {
	billing       *billing.Service
	organizations *organization.Service
}

// NewSubscriptionHandler 创建订阅处理器
func NewSubscriptionHandler(billingSvc *billing.Service, organizations *organization.Service) *SubscriptionHandler {
	return &SubscriptionHandler{
		billing:       billingSvc,
		organizations: organizations,
	}
}

// Get 获取组织订阅状态
// GET /api/subscriptions/:organizationId
func (h *SubscriptionHandler) Get(c *gin.Context) {
	orgID := c.Param("organizationId")
	if _, err := h.organizations.CheckMembership(c.Request.Context(), orgID, profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}

	sub, err := h.billing.Get(c.Request.Context(), orgID)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, sub)
}

// Upgrade 升级为 Pro：注册支付手段并立即扣首期款
// POST /api/subscriptions/upgrade
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	var req dto.UpgradeSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "organization_id and payment_method_id are required")
		return
	}
	if _, err := h.organizations.CheckOwnership(c.Request.Context(), req.OrganizationID, profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}

	sub, err := h.billing.Upgrade(c.Request.Context(), req.OrganizationID, req.PaymentMethodID)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, sub)
}

// Cancel 取消订阅，当前计费周期结束前仍可使用 Pro
// POST /api/subscriptions/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	var req dto.SubscriptionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "organization_id is required")
		return
	}
	if _, err := h.organizations.CheckOwnership(c.Request.Context(), req.OrganizationID, profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}

	sub, err := h.billing.Cancel(c.Request.Context(), req.OrganizationID)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, sub)
}

// Reactivate 在宽限期内恢复已取消的订阅
// POST /api/subscriptions/reactivate
func (h *SubscriptionHandler) Reactivate(c *gin.Context) {
	var req dto.SubscriptionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "organization_id is required")
		return
	}
	if _, err := h.organizations.CheckOwnership(c.Request.Context(), req.OrganizationID, profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}

	sub, err := h.billing.Reactivate(c.Request.Context(), req.OrganizationID)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, sub)
}

// DeleteBillingKey 删除支付手段并立即降级为 Free
// DELETE /api/subscriptions/billing-key?organization_id=...
func (h *SubscriptionHandler) DeleteBillingKey(c *gin.Context) {
	orgID := c.Query("organization_id")
	if orgID == "" {
		dto.FailValidation(c, "organization_id is required")
		return
	}
	if _, err := h.organizations.CheckOwnership(c.Request.Context(), orgID, profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}

	sub, err := h.billing.DeleteBillingKey(c.Request.Context(), orgID)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, sub)
}

// ListPayments 列出组织的支付流水
// GET /api/subscriptions/:organizationId/payments
func (h *SubscriptionHandler) ListPayments(c *gin.Context) {
	orgID := c.Param("organizationId")
	if _, err := h.organizations.CheckMembership(c.Request.Context(), orgID, profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}

	result, err := h.billing.ListPayments(c.Request.Context(), orgID, dto.BindPagination(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Paged(c, "payments", result)
}

// ListPaymentMethods 列出组织存储的支付手段
// GET /api/subscriptions/:organizationId/payment-methods
func (h *SubscriptionHandler) ListPaymentMethods(c *gin.Context) {
	orgID := c.Param("organizationId")
	if _, err := h.organizations.CheckMembership(c.Request.Context(), orgID, profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}

	methods, err := h.billing.ListPaymentMethods(c.Request.Context(), orgID)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, gin.H{"payment_methods": methods})
}
