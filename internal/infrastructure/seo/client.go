// Package seo 提供关键词搜索量数据提供商客户端
package seo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"inkpress-ai-api/internal/config"
	apperrors "inkpress-ai-api/pkg/errors"
)

var tracer = otel.Tracer("seo")

// VolumeEntry 单个关键词的搜索量数据
type VolumeEntry struct {
	Keyword      string `json:"keyword"`
	SearchVolume int64  `json:"search_volume"`
}

// Client 关键词数据提供商客户端
type Client struct {
	cfg        *config.SEOConfig
	httpClient *http.Client
}

// NewClient 创建数据提供商客户端
func NewClient(cfg *config.SEOConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type volumeResponse struct {
	Results []VolumeEntry `json:"results"`
}

// FetchVolumes 批量查询关键词的月搜索量
// 提供商按关键词返回数据，缺失的关键词不在结果中
func (c *Client) FetchVolumes(ctx context.Context, keywords []string) ([]VolumeEntry, error) {
	ctx, span := tracer.Start(ctx, "seo.FetchVolumes")
	span.SetAttributes(attribute.Int("seo.keyword_count", len(keywords)))
	defer span.End()

	if len(keywords) == 0 {
		return nil, nil
	}

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "/v1/keywords/volume")
	if err != nil {
		return nil, fmt.Errorf("invalid seo base url: %w", err)
	}

	query := url.Values{}
	query.Set("keywords", strings.Join(keywords, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build seo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("seo request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.New(apperrors.CodeSEOInvalidCredential, "seo provider rejected credential")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("seo provider returned status %d", resp.StatusCode)
	}

	var body volumeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode seo response: %w", err)
	}
	return body.Results, nil
}
