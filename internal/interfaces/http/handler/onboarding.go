package handler

import (
	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/profile"
	"inkpress-ai-api/internal/interfaces/http/dto"
)

// OnboardingHandler 引导流程处理器
type OnboardingHandler struct {
	profiles *profile.Resolver
}

// NewOnboardingHandler 创建引导流程处理器
func NewOnboardingHandler(profiles *profile.Resolver) *OnboardingHandler {
	return &OnboardingHandler{profiles: profiles}
}

// Complete 标记当前档案已完成引导
// PATCH /api/onboarding/complete
func (h *OnboardingHandler) Complete(c *gin.Context) {
	if err := h.profiles.CompleteOnboarding(c.Request.Context(), profileID(c)); err != nil {
		dto.Fail(c, err)
		return
	}
	dto.OK(c, gin.H{"onboarding_completed": true})
}
