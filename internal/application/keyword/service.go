// Package keyword 提供关键词的归一化入库、搜索量回填与 LLM 建议
package keyword

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"inkpress-ai-api/internal/domain/entity"
	"inkpress-ai-api/internal/domain/repository"
	"inkpress-ai-api/internal/infrastructure/llm"
	"inkpress-ai-api/internal/infrastructure/seo"
	apperrors "inkpress-ai-api/pkg/errors"
	"inkpress-ai-api/pkg/logger"
	"inkpress-ai-api/pkg/utils"
)

// Service 关键词服务
type Service struct {
	keywordRepo repository.KeywordRepository
	llmFactory  *llm.Factory
	seoClient   *seo.Client
}

// NewService 创建关键词服务
func NewService(keywordRepo repository.KeywordRepository, llmFactory *llm.Factory, seoClient *seo.Client) *Service {
	return &Service{
		keywordRepo: keywordRepo,
		llmFactory:  llmFactory,
		seoClient:   seoClient,
	}
}

// Add 归一化并入库单个关键词，重复时返回已存在的记录
func (s *Service) Add(ctx context.Context, text string, source entity.KeywordSource) (*entity.Keyword, error) {
	normalized := utils.NormalizeKeyword(text)
	if normalized == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "keyword must not be empty")
	}

	stored, err := s.keywordRepo.Upsert(ctx, entity.NewKeyword(text, normalized, source))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to add keyword")
	}
	return stored, nil
}

// AddBulk 批量归一化入库，入参内部先去重
func (s *Service) AddBulk(ctx context.Context, texts []string, source entity.KeywordSource) ([]*entity.Keyword, error) {
	seen := make(map[string]struct{}, len(texts))
	batch := make([]*entity.Keyword, 0, len(texts))
	for _, text := range texts {
		normalized := utils.NormalizeKeyword(text)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		batch = append(batch, entity.NewKeyword(text, normalized, source))
	}
	if len(batch) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "no valid keywords in request")
	}

	stored, err := s.keywordRepo.UpsertBatch(ctx, batch)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to add keywords")
	}
	return stored, nil
}

// List 分页列出关键词
func (s *Service) List(ctx context.Context, page repository.Pagination) (*repository.PagedResult[*entity.Keyword], error) {
	result, err := s.keywordRepo.List(ctx, page)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list keywords")
	}
	return result, nil
}

// Suggest 让 LLM 围绕话题给出相关关键词，并回填搜索量
func (s *Service) Suggest(ctx context.Context, topic string, count int) ([]*entity.Keyword, error) {
	if count <= 0 || count > 20 {
		count = 10
	}
	suggestions, err := s.complete(ctx, fmt.Sprintf(
		"Suggest %d SEO keywords closely related to the topic %q. ", count, topic))
	if err != nil {
		return nil, err
	}
	return s.persistSuggestions(ctx, suggestions)
}

// LongTails 让 LLM 基于种子关键词生成长尾变体，并回填搜索量
func (s *Service) LongTails(ctx context.Context, seed string, count int) ([]*entity.Keyword, error) {
	if count <= 0 || count > 20 {
		count = 10
	}
	suggestions, err := s.complete(ctx, fmt.Sprintf(
		"Generate %d long-tail keyword variations of the seed keyword %q. ", count, seed))
	if err != nil {
		return nil, err
	}
	return s.persistSuggestions(ctx, suggestions)
}

func (s *Service) complete(ctx context.Context, instruction string) ([]string, error) {
	chatModel, err := s.llmFactory.Default(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm provider unavailable")
	}

	msgs := []*schema.Message{
		schema.SystemMessage("You are an SEO keyword researcher. Respond with a JSON array of keyword strings only, no markdown, no commentary."),
		schema.UserMessage(instruction + "Respond with a JSON array of strings."),
	}
	out, err := chatModel.Generate(ctx, msgs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMProviderError, "keyword suggestion failed")
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return nil, apperrors.New(apperrors.CodeLLMProviderError, "empty llm response")
	}

	return parseKeywordArray(out.Content)
}

// parseKeywordArray 从模型输出里提取关键词数组，容忍 markdown 代码块包裹
func parseKeywordArray(raw string) ([]string, error) {
	cleaned := strings.TrimSpace(raw)
	if start := strings.Index(cleaned, "["); start >= 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var keywords []string
	if err := json.Unmarshal([]byte(cleaned), &keywords); err != nil {
		return nil, apperrors.New(apperrors.CodeLLMProviderError, "malformed keyword suggestion output")
	}
	return keywords, nil
}

func (s *Service) persistSuggestions(ctx context.Context, suggestions []string) ([]*entity.Keyword, error) {
	stored, err := s.AddBulk(ctx, suggestions, entity.KeywordSourceAI)
	if err != nil {
		return nil, err
	}

	// 搜索量回填是非关键副作用，提供商故障不影响建议结果
	if s.seoClient != nil {
		s.backfillVolumes(ctx, stored)
	}
	return stored, nil
}

func (s *Service) backfillVolumes(ctx context.Context, keywords []*entity.Keyword) {
	texts := make([]string, 0, len(keywords))
	byNormalized := make(map[string]*entity.Keyword, len(keywords))
	for _, k := range keywords {
		texts = append(texts, k.NormalizedText)
		byNormalized[k.NormalizedText] = k
	}

	entries, err := s.seoClient.FetchVolumes(ctx, texts)
	if err != nil {
		logger.Warn(ctx, "failed to fetch keyword volumes", "error", err)
		return
	}
	for _, entry := range entries {
		k, ok := byNormalized[utils.NormalizeKeyword(entry.Keyword)]
		if !ok {
			continue
		}
		volume := entry.SearchVolume
		k.SearchVolume = &volume
		if err := s.keywordRepo.UpdateSearchVolume(ctx, k.ID, volume); err != nil {
			logger.Warn(ctx, "failed to store keyword volume", "keyword_id", k.ID, "error", err)
		}
	}
}
