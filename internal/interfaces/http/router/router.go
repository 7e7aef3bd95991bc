// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkpress-ai-api/internal/config"
	"inkpress-ai-api/internal/interfaces/http/handler"
	"inkpress-ai-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Health       *handler.HealthHandler
	Article      *handler.ArticleHandler
	Generation   *handler.GenerationHandler
	StyleGuide   *handler.StyleGuideHandler
	Onboarding   *handler.OnboardingHandler
	Organization *handler.OrganizationHandler
	Subscription *handler.SubscriptionHandler
	Keyword      *handler.KeywordHandler
	Webhook      *handler.WebhookHandler
}

// Middlewares 路由依赖的业务中间件
type Middlewares struct {
	Auth      gin.HandlerFunc
	RateLimit gin.HandlerFunc
}

// Router HTTP 路由器
type Router struct {
	engine      *gin.Engine
	cfg         *config.Config
	handlers    *Handlers
	middlewares *Middlewares
}

// New 创建新的路由器
func New(cfg *config.Config, handlers *Handlers, middlewares *Middlewares) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:      gin.New(),
		cfg:         cfg,
		handlers:    handlers,
		middlewares: middlewares,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置全局中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(&r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置系统端点与指标端点，业务路由在 routes.go
func (r *Router) setupRoutes() {
	r.engine.GET("/healthz", r.handlers.Health.Live)
	r.engine.GET("/readyz", r.handlers.Health.Ready)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	r.setupAPIRoutes()
}
