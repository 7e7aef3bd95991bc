package handler

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/organization"
	"inkpress-ai-api/internal/interfaces/http/dto"
)

// OrganizationHandler 组织处理器
type OrganizationHandler struct {
	organizations *organization.Service
}

// NewOrganizationHandler 创建组织处理器
func NewOrganizationHandler(organizations *organization.Service) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations}
}

// List 列出当前档案所属的组织
// GET /api/organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	orgs, err := h.organizations.List(c.Request.Context(), profileID(c))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, gin.H{"organizations": orgs})
}

// Create 创建组织
// POST /api/organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "name is required")
		return
	}

	created, err := h.organizations.Create(c.Request.Context(), profileID(c), req.Name, req.Description)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, created)
}

// Get 获取组织详情
// GET /api/organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	org, err := h.organizations.Get(c.Request.Context(), profileID(c), c.Param("id"))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, org)
}

// Update 更新组织信息
// PATCH /api/organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	var req dto.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "name is required")
		return
	}

	updated, err := h.organizations.Update(c.Request.Context(), profileID(c), c.Param("id"), req.Name, req.Description)
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, updated)
}

// Delete 删除组织
// DELETE /api/organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	if err := h.organizations.Delete(c.Request.Context(), profileID(c), c.Param("id")); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}

// Leave 退出组织
// POST /api/organizations/:id/leave
func (h *OrganizationHandler) Leave(c *gin.Context) {
	if err := h.organizations.Leave(c.Request.Context(), profileID(c), c.Param("id")); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}

// ListMembers 列出组织成员
// GET /api/organizations/:id/members
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	members, err := h.organizations.ListMembers(c.Request.Context(), profileID(c), c.Param("id"))
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, gin.H{"members": members})
}

// AddMember 添加成员
// POST /api/organizations/:id/members
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FailValidation(c, "profile_id is required")
		return
	}

	member, err := h.organizations.AddMember(c.Request.Context(), profileID(c), c.Param("id"), req.ProfileID, req.MemberRole())
	if err != nil {
		dto.Fail(c, err)
		return
	}
	dto.Created(c, member)
}

// RemoveMember 移除成员
// DELETE /api/organizations/:id/members/:memberId
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	if err := h.organizations.RemoveMember(c.Request.Context(), profileID(c), c.Param("id"), c.Param("memberId")); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.NoContent(c)
}
