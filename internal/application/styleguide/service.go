// Package styleguide 提供品牌语调配置的管理
package styleguide

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	redisinfra "inkpress-ai-api/internal/infrastructure/persistence/redis"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
)

const cacheTTL = 10 * time.Minute

// CreateInput 创建风格指南入参
type CreateInput struct {
	Name           string
	Description    string
	Personality    []string
	Formality      string
	TargetAudience string
	PainPoints     []string
	Language       entity.Language
	Tone           entity.Tone
	ContentLength  entity.ContentLength
	ReadingLevel   entity.ReadingLevel
	Notes          string
	IsDefault      bool
}

// UpdateInput 更新风格指南入参，nil 字段不变
type UpdateInput struct {
	Name           *string
	Description    *string
	Personality    *[]string
	Formality      *string
	TargetAudience *string
	PainPoints     *[]string
	Language       *entity.Language
	Tone           *entity.Tone
	ContentLength  *entity.ContentLength
	ReadingLevel   *entity.ReadingLevel
	Notes          *string
	IsDefault      *bool
}

// Service 风格指南服务
type Service struct {
	guideRepo repository.StyleGuideRepository
	cache     *redisinfra.Cache
}

// NewService 创建风格指南服务
func NewService(guideRepo repository.StyleGuideRepository, cache *redisinfra.Cache) *Service {
	return &Service{
		guideRepo: guideRepo,
		cache:     cache,
	}
}

// Create 创建风格指南
func (s *Service) Create(ctx context.Context, profileID string, in *CreateInput) (*entity.StyleGuide, error) {
	guide := entity.NewStyleGuide(profileID, in.Name)
	guide.Description = in.Description
	guide.Personality = in.Personality
	guide.Formality = in.Formality
	guide.TargetAudience = in.TargetAudience
	guide.PainPoints = in.PainPoints
	if in.Language != "" {
		guide.Language = in.Language
	}
	if in.Tone != "" {
		guide.Tone = in.Tone
	}
	if in.ContentLength != "" {
		guide.ContentLength = in.ContentLength
	}
	if in.ReadingLevel != "" {
		guide.ReadingLevel = in.ReadingLevel
	}
	guide.AdditionalNotes = in.Notes
	guide.IsDefault = in.IsDefault

	if err := s.guideRepo.Create(ctx, guide); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create style guide")
	}
	if in.IsDefault {
		s.invalidateDefault(ctx, profileID)
	}
	return guide, nil
}

// Get 按 ID 获取风格指南，经过 Read-Through 缓存
func (s *Service) Get(ctx context.Context, profileID, id string) (*entity.StyleGuide, error) {
	if s.cache == nil {
		return s.load(ctx, profileID, id)
	}

	key := redisinfra.BuildStyleGuideKey(profileID, id)
	raw, err := s.cache.GetOrLoadSafe(ctx, key, cacheTTL, func() (interface{}, error) {
		return s.load(ctx, profileID, id)
	})
	if err != nil {
		// 业务错误原样上抛，缓存链路故障直接回源
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		logger.Warn(ctx, "style guide cache bypassed", "error", err)
		return s.load(ctx, profileID, id)
	}

	var guide entity.StyleGuide
	if err := json.Unmarshal(raw, &guide); err != nil {
		return s.load(ctx, profileID, id)
	}
	return &guide, nil
}

// GetDefault 获取默认风格指南，没有则返回 nil
func (s *Service) GetDefault(ctx context.Context, profileID string) (*entity.StyleGuide, error) {
	guide, err := s.guideRepo.GetDefault(ctx, profileID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get default style guide")
	}
	return guide, nil
}

// List 列出档案的全部风格指南
func (s *Service) List(ctx context.Context, profileID string) ([]*entity.StyleGuide, error) {
	guides, err := s.guideRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list style guides")
	}
	return guides, nil
}

// Update 部分更新风格指南
func (s *Service) Update(ctx context.Context, profileID, id string, in *UpdateInput) (*entity.StyleGuide, error) {
	guide, err := s.load(ctx, profileID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		guide.Name = *in.Name
	}
	if in.Description != nil {
		guide.Description = *in.Description
	}
	if in.Personality != nil {
		guide.Personality = *in.Personality
	}
	if in.Formality != nil {
		guide.Formality = *in.Formality
	}
	if in.TargetAudience != nil {
		guide.TargetAudience = *in.TargetAudience
	}
	if in.PainPoints != nil {
		guide.PainPoints = *in.PainPoints
	}
	if in.Language != nil {
		guide.Language = *in.Language
	}
	if in.Tone != nil {
		guide.Tone = *in.Tone
	}
	if in.ContentLength != nil {
		guide.ContentLength = *in.ContentLength
	}
	if in.ReadingLevel != nil {
		guide.ReadingLevel = *in.ReadingLevel
	}
	if in.Notes != nil {
		guide.AdditionalNotes = *in.Notes
	}

	if err := s.guideRepo.Update(ctx, guide); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to update style guide")
	}

	if in.IsDefault != nil && *in.IsDefault && !guide.IsDefault {
		if err := s.guideRepo.SetDefault(ctx, profileID, id); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to set default style guide")
		}
		guide.IsDefault = true
		s.invalidateDefault(ctx, profileID)
	}

	s.invalidate(ctx, profileID, id)
	return guide, nil
}

// SetDefault 设为默认风格指南
func (s *Service) SetDefault(ctx context.Context, profileID, id string) error {
	if guide, err := s.load(ctx, profileID, id); err != nil {
		return err
	} else if guide == nil {
		return apperrors.ErrStyleGuideNotFound
	}
	if err := s.guideRepo.SetDefault(ctx, profileID, id); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to set default style guide")
	}
	s.invalidateDefault(ctx, profileID)
	s.invalidate(ctx, profileID, id)
	return nil
}

// Delete 删除风格指南
func (s *Service) Delete(ctx context.Context, profileID, id string) error {
	if _, err := s.load(ctx, profileID, id); err != nil {
		return err
	}
	if err := s.guideRepo.Delete(ctx, profileID, id); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete style guide")
	}
	s.invalidate(ctx, profileID, id)
	s.invalidateDefault(ctx, profileID)
	return nil
}

func (s *Service) load(ctx context.Context, profileID, id string) (*entity.StyleGuide, error) {
	guide, err := s.guideRepo.GetByID(ctx, profileID, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get style guide")
	}
	if guide == nil {
		return nil, apperrors.ErrStyleGuideNotFound
	}
	return guide, nil
}

func (s *Service) invalidate(ctx context.Context, profileID, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, redisinfra.BuildStyleGuideKey(profileID, id)); err != nil {
		logger.Warn(ctx, "failed to invalidate style guide cache", "error", err)
	}
}

func (s *Service) invalidateDefault(ctx context.Context, profileID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, redisinfra.BuildDefaultStyleGuideKey(profileID)); err != nil {
		logger.Warn(ctx, "failed to invalidate default style guide cache", "error", err)
	}
}
