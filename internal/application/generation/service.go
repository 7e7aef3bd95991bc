// Package generation 编排 AI 文章生成：配额闸门、提示词、流式 LLM 调用与落库
package generation

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"inkpress-ai-api/internal/application/quota"
	"inkpress-ai-api/internal/application/styleguide"
	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	"inkpress-ai-api/internal/infrastructure/llm"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
	"inkpress-ai-api/pkg/metrics"
	"inkpress-ai-api/pkg/utils"
)

// Request 生成请求
type Request struct {
	Topic                  string
	StyleGuideID           string
	Keywords               []string
	AdditionalInstructions string
}

// Result 非流式生成结果
type Result struct {
	Article          *entity.Article `json:"article"`
	GeneratedContent string          `json:"generated_content"`
	QuotaRemaining   int             `json:"quota_remaining"`
}

// Service 生成编排器
type Service struct {
	articleRepo repository.ArticleRepository
	guides      *styleguide.Service
	quota       *quota.Tracker
	llmFactory  *llm.Factory
	now         func() time.Time
}

// NewService 创建生成编排器
func NewService(
	articleRepo repository.ArticleRepository,
	guides *styleguide.Service,
	quotaTracker *quota.Tracker,
	llmFactory *llm.Factory,
) *Service {
	return &Service{
		articleRepo: articleRepo,
		guides:      guides,
		quota:       quotaTracker,
		llmFactory:  llmFactory,
		now:         time.Now,
	}
}

// Generate 非流式生成：消费整个流后一次性返回
func (s *Service) Generate(ctx context.Context, profileID, orgID string, req *Request) (*Result, error) {
	var result *Result
	err := s.run(ctx, profileID, orgID, req, func(*Event) {}, func(article *entity.Article, content string, remaining int) {
		result = &Result{
			Article:          article,
			GeneratedContent: content,
			QuotaRemaining:   remaining,
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Stream 流式生成：按具名步骤把事件推给 emit，调用方转发为 SSE
// emit 在本次调用的 goroutine 内被串行调用
func (s *Service) Stream(ctx context.Context, profileID, orgID string, req *Request, emit func(*Event)) error {
	return s.run(ctx, profileID, orgID, req, emit, nil)
}

func (s *Service) run(
	ctx context.Context,
	profileID, orgID string,
	req *Request,
	emit func(*Event),
	onFinish func(*entity.Article, string, int),
) error {
	started := s.now()

	// 配额闸门
	status, err := s.quota.Check(ctx, orgID)
	if err != nil {
		return err
	}
	if !status.Allowed {
		metrics.QuotaRejectedTotal.WithLabelValues(string(status.Tier)).Inc()
		return apperrors.QuotaExceeded(string(status.Tier), status.CurrentCount, status.Limit)
	}

	// 风格指南：显式 ID 必须命中，否则回落到默认
	guide, err := s.resolveGuide(ctx, profileID, req.StyleGuideID)
	if err != nil {
		return err
	}

	mainKeyword := req.Topic
	if len(req.Keywords) > 0 {
		mainKeyword = req.Keywords[0]
	}
	emit(&Event{Step: StepMainKeyword, MainKeyword: utils.NormalizeKeyword(mainKeyword)})
	if len(req.Keywords) > 0 {
		emit(&Event{Step: StepSuggestKeywords, Keywords: req.Keywords})
	}
	emit(&Event{Step: StepResearch, Research: "brand voice: " + guide.Name})

	system, user := RenderPrompt(&PromptInput{
		Topic:                  req.Topic,
		Keywords:               req.Keywords,
		Guide:                  guide,
		AdditionalInstructions: req.AdditionalInstructions,
	})

	raw, err := s.consumeStream(ctx, system, user, emit)
	if err != nil {
		metrics.ArticleGenerationTotal.WithLabelValues(orgID, "failed").Inc()
		return err
	}

	draft := ExtractDraft(raw)
	article, err := s.persist(ctx, profileID, guide, req, draft, raw)
	if err != nil {
		metrics.ArticleGenerationTotal.WithLabelValues(orgID, "failed").Inc()
		return err
	}

	// 软失败：文章已落库，配额推进失败只记录告警不回滚
	remaining := status.Remaining - 1
	if newStatus, err := s.quota.Increment(ctx, orgID); err != nil {
		logger.Warn(ctx, "quota increment failed after generation",
			"organization_id", orgID, "article_id", article.ID, "error", err)
	} else {
		remaining = newStatus.Remaining
	}

	metrics.ArticleGenerationTotal.WithLabelValues(orgID, "succeeded").Inc()
	metrics.ArticleGenerationDuration.WithLabelValues(orgID).Observe(s.now().Sub(started).Seconds())

	emit(&Event{Step: StepDone, ArticleID: article.ID, Draft: draft, QuotaRemaining: remaining})
	if onFinish != nil {
		onFinish(article, draft.Content, remaining)
	}
	return nil
}

func (s *Service) resolveGuide(ctx context.Context, profileID, guideID string) (*entity.StyleGuide, error) {
	if guideID != "" {
		return s.guides.Get(ctx, profileID, guideID)
	}
	guide, err := s.guides.GetDefault(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if guide == nil {
		// 没有任何风格指南也能生成，用缺省品牌设置（不落库，不关联文章）
		guide = entity.NewStyleGuide(profileID, "default")
		guide.ID = ""
	}
	return guide, nil
}

// consumeStream 调 LLM 并逐块消费，返回完整原始输出
// 每个增量块都转发 content 事件并附带当前能解出的草稿快照
func (s *Service) consumeStream(ctx context.Context, system, user string, emit func(*Event)) (string, error) {
	chatModel, err := s.llmFactory.Default(ctx)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm provider unavailable")
	}

	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	callStart := s.now()
	sr, err := chatModel.Stream(ctx, msgs)
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues("default", "", "failed").Inc()
		return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm stream failed")
	}
	defer sr.Close()

	var full strings.Builder
	metadataSent := false
	for {
		chunk, err := sr.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			metrics.LLMCallTotal.WithLabelValues("default", "", "failed").Inc()
			return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm stream interrupted")
		}
		if chunk == nil {
			continue
		}

		if chunk.ResponseMeta != nil && chunk.ResponseMeta.Usage != nil {
			usage := chunk.ResponseMeta.Usage
			metrics.LLMTokensUsed.WithLabelValues("default", "", "prompt").Add(float64(usage.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues("default", "", "completion").Add(float64(usage.CompletionTokens))
		}
		if chunk.Content == "" {
			continue
		}

		full.WriteString(chunk.Content)
		draft := ExtractDraft(full.String())
		if !metadataSent && draft.Title != "" && draft.MetaDescription != "" {
			metadataSent = true
			emit(&Event{Step: StepMetadata, Draft: draft})
		}
		emit(&Event{Step: StepContent, Delta: chunk.Content, Draft: draft})
	}

	metrics.LLMCallTotal.WithLabelValues("default", "", "succeeded").Inc()
	metrics.LLMCallDuration.WithLabelValues("default", "").Observe(s.now().Sub(callStart).Seconds())

	if full.Len() == 0 {
		return "", apperrors.ErrGenerationFailed
	}
	return full.String(), nil
}

func (s *Service) persist(
	ctx context.Context,
	profileID string,
	guide *entity.StyleGuide,
	req *Request,
	draft *Draft,
	raw string,
) (*entity.Article, error) {
	title := draft.Title
	if title == "" {
		title = req.Topic
	}
	content := draft.Content
	if content == "" {
		// 模型没按结构化格式回复时保留原始输出
		content = raw
	}
	keywords := draft.Keywords
	if len(keywords) == 0 {
		keywords = req.Keywords
	}

	article := entity.NewArticle(profileID, title, utils.Slugify(title))
	article.Keywords = keywords
	article.Description = draft.MetaDescription
	article.Content = content
	if guide.ID != "" {
		guideID := guide.ID
		article.StyleGuideID = &guideID
	}
	article.Tone = guide.Tone
	article.ContentLength = guide.ContentLength
	article.ReadingLevel = guide.ReadingLevel
	article.MetaTitle = title
	article.MetaDescription = draft.MetaDescription

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist generated article")
	}
	return article, nil
}
