// Package app 负责应用组装：按构造函数手工注入依赖
package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"inkpress-ai-api/internal/application/article"
	"inkpress-ai-api/internal/application/billing"
	"inkpress-ai-api/internal/application/generation"
	"inkpress-ai-api/internal/application/keyword"
	"inkpress-ai-api/internal/application/organization"
	"inkpress-ai-api/internal/application/profile"
	"inkpress-ai-api/internal/application/quota"
	"inkpress-ai-api/internal/application/styleguide"
	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/infrastructure/llm"
	"inkpress-ai-api/internal/infrastructure/payment"
	"inkpress-ai-api/internal/infrastructure/persistence/postgres"
	redisinfra "inkpress-ai-api/internal/infrastructure/persistence/redis"
	"inkpress-ai-api/internal/infrastructure/seo"
	"inkpress-ai-api/internal/interfaces/http/handler"
	"inkpress-ai-api/internal/interfaces/http/middleware"
	"inkpress-ai-api/internal/interfaces/http/router"
	"inkpress-ai-api/pkg/logger"
	"inkpress-ai-api/pkg/utils"
)

// App 组装完成的应用
type App struct {
	cfg      *config.Config
	router   *router.Router
	postgres *postgres.Client
	redis    *redisinfra.Client

	// Sweeper 供计费 worker 复用同一套装配
	Sweeper *billing.Sweeper
}

// New 组装应用的全部组件
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// 基础设施
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}

	redisClient, err := redisinfra.NewClient(&cfg.Cache.Redis)
	if err != nil {
		_ = pgClient.Close()
		return nil, err
	}

	cache := redisinfra.NewCache(redisClient)
	rateLimiter := redisinfra.NewRateLimiter(redisClient)
	billingGuard := redisinfra.NewBillingGuard(redisClient)

	llmFactory := llm.NewFactory(&cfg.LLM)
	stripeGateway := payment.NewStripeGateway(&cfg.Billing)
	seoClient := seo.NewClient(&cfg.SEO)

	// 仓储
	profileRepo := postgres.NewProfileRepository(pgClient)
	articleRepo := postgres.NewArticleRepository(pgClient)
	styleGuideRepo := postgres.NewStyleGuideRepository(pgClient)
	quotaRepo := postgres.NewQuotaRepository(pgClient)
	orgRepo := postgres.NewOrganizationRepository(pgClient)
	memberRepo := postgres.NewMemberRepository(pgClient)
	subscriptionRepo := postgres.NewSubscriptionRepository(pgClient)
	paymentRepo := postgres.NewPaymentRepository(pgClient)
	keywordRepo := postgres.NewKeywordRepository(pgClient)
	txManager := postgres.NewTxManager(pgClient)

	// 应用服务
	profileResolver := profile.NewResolver(profileRepo)
	quotaTracker := quota.NewTracker(quotaRepo, &cfg.Billing)
	styleGuideSvc := styleguide.NewService(styleGuideRepo, cache)
	articleSvc := article.NewService(articleRepo)
	organizationSvc := organization.NewService(orgRepo, memberRepo, txManager)
	billingSvc := billing.NewService(subscriptionRepo, paymentRepo, stripeGateway, quotaTracker, &cfg.Billing)
	sweeper := billing.NewSweeper(billingSvc, billingGuard)
	keywordSvc := keyword.NewService(keywordRepo, llmFactory, seoClient)
	generationSvc := generation.NewService(articleRepo, styleGuideSvc, quotaTracker, llmFactory)

	// HTTP 层
	handlers := &router.Handlers{
		Health:       handler.NewHealthHandler(pgClient, redisClient),
		Article:      handler.NewArticleHandler(articleSvc),
		Generation:   handler.NewGenerationHandler(generationSvc, organizationSvc),
		StyleGuide:   handler.NewStyleGuideHandler(styleGuideSvc),
		Onboarding:   handler.NewOnboardingHandler(profileResolver),
		Organization: handler.NewOrganizationHandler(organizationSvc),
		Subscription: handler.NewSubscriptionHandler(billingSvc, organizationSvc),
		Keyword:      handler.NewKeywordHandler(keywordSvc),
		Webhook:      handler.NewWebhookHandler(profileResolver, &cfg.Identity),
	}

	verifier := utils.NewTokenVerifier(cfg.Identity.SessionSecret, cfg.Identity.Issuer)
	middlewares := &router.Middlewares{
		Auth:      middleware.Auth(verifier, profileResolver),
		RateLimit: middleware.RateLimit(rateLimiter, &cfg.Security.RateLimit),
	}

	return &App{
		cfg:      cfg,
		router:   router.New(cfg, handlers, middlewares),
		postgres: pgClient,
		redis:    redisClient,
		Sweeper:  sweeper,
	}, nil
}

// Engine 返回 HTTP 引擎
func (a *App) Engine() *gin.Engine {
	return a.router.Engine()
}

// Close 释放持有的连接
func (a *App) Close(ctx context.Context) {
	if err := a.redis.Close(); err != nil {
		logger.Warn(ctx, "failed to close redis client", "error", err)
	}
	if err := a.postgres.Close(); err != nil {
		logger.Warn(ctx, "failed to close postgres client", "error", err)
	}
}
