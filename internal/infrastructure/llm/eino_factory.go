// Package llm 基于 Eino 封装大模型访问
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"inkpress-ai-api/internal/config"
)

// 未配置时的生成参数兜底值
const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

// Factory 按配置惰性构建并缓存 ChatModel 客户端
// 文章生成与关键词建议都走默认 provider，Provider 留给按名选用
type Factory struct {
	cfg    *config.LLMConfig
	mu     sync.RWMutex
	models map[string]model.BaseChatModel
}

// NewFactory 创建 LLM 工厂
func NewFactory(cfg *config.LLMConfig) *Factory {
	return &Factory{
		cfg:    cfg,
		models: make(map[string]model.BaseChatModel),
	}
}

// Default 返回默认 provider 的 ChatModel
func (f *Factory) Default(ctx context.Context) (model.BaseChatModel, error) {
	if f.cfg.DefaultProvider == "" {
		return nil, fmt.Errorf("llm default provider is not configured")
	}
	return f.Provider(ctx, f.cfg.DefaultProvider)
}

// Provider 返回指定 provider 的 ChatModel，首次使用时构建并缓存
func (f *Factory) Provider(ctx context.Context, name string) (model.BaseChatModel, error) {
	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	m, err := f.build(ctx, name)
	if err != nil {
		return nil, err
	}
	f.models[name] = m
	return m, nil
}

// build 校验 provider 配置并创建 OpenAI 兼容客户端
func (f *Factory) build(ctx context.Context, name string) (model.BaseChatModel, error) {
	providerCfg, ok := f.cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("llm provider %q is not configured", name)
	}
	if providerCfg.Model == "" {
		return nil, fmt.Errorf("llm provider %q has no model configured", name)
	}

	maxTokens := providerCfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := float32(providerCfg.Temperature)
	if providerCfg.Temperature <= 0 {
		temperature = defaultTemperature
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     providerCfg.BaseURL,
		Model:       providerCfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for provider %q: %w", name, err)
	}
	return chatModel, nil
}
