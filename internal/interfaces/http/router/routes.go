package router

// setupAPIRoutes 配置 /api 下的业务路由
// Webhook 不走认证中间件，自带签名校验
func (r *Router) setupAPIRoutes() {
	api := r.engine.Group("/api")

	webhooks := api.Group("/webhooks")
	{
		webhooks.POST("/identity", r.handlers.Webhook.HandleIdentity)
	}

	authed := api.Group("")
	authed.Use(r.middlewares.Auth)
	if r.middlewares.RateLimit != nil {
		authed.Use(r.middlewares.RateLimit)
	}

	articles := authed.Group("/articles")
	{
		articles.GET("", r.handlers.Article.List)
		articles.POST("/draft", r.handlers.Article.Create)
		articles.POST("/generate", r.handlers.Generation.Generate)
		articles.POST("/generate/stream", r.handlers.Generation.GenerateStream)
		articles.GET("/:id", r.handlers.Article.Get)
		articles.PATCH("/:id", r.handlers.Article.Update)
		articles.DELETE("/:id", r.handlers.Article.Delete)
	}

	styleGuides := authed.Group("/style-guides")
	{
		styleGuides.POST("", r.handlers.StyleGuide.Create)
		styleGuides.GET("/:userId", r.handlers.StyleGuide.ListByProfile)
		styleGuides.PATCH("/:id", r.handlers.StyleGuide.Update)
		styleGuides.DELETE("/:id", r.handlers.StyleGuide.Delete)
	}

	onboarding := authed.Group("/onboarding")
	{
		onboarding.PATCH("/complete", r.handlers.Onboarding.Complete)
	}

	organizations := authed.Group("/organizations")
	{
		organizations.GET("", r.handlers.Organization.List)
		organizations.POST("", r.handlers.Organization.Create)
		organizations.GET("/:id", r.handlers.Organization.Get)
		organizations.PATCH("/:id", r.handlers.Organization.Update)
		organizations.DELETE("/:id", r.handlers.Organization.Delete)
		organizations.POST("/:id/leave", r.handlers.Organization.Leave)
		organizations.GET("/:id/members", r.handlers.Organization.ListMembers)
		organizations.POST("/:id/members", r.handlers.Organization.AddMember)
		organizations.DELETE("/:id/members/:memberId", r.handlers.Organization.RemoveMember)
	}

	subscriptions := authed.Group("/subscriptions")
	{
		subscriptions.POST("/upgrade", r.handlers.Subscription.Upgrade)
		subscriptions.POST("/cancel", r.handlers.Subscription.Cancel)
		subscriptions.POST("/reactivate", r.handlers.Subscription.Reactivate)
		subscriptions.DELETE("/billing-key", r.handlers.Subscription.DeleteBillingKey)
		subscriptions.GET("/:organizationId", r.handlers.Subscription.Get)
		subscriptions.GET("/:organizationId/payments", r.handlers.Subscription.ListPayments)
		subscriptions.GET("/:organizationId/payment-methods", r.handlers.Subscription.ListPaymentMethods)
	}

	keywords := authed.Group("/keywords")
	{
		keywords.GET("", r.handlers.Keyword.List)
		keywords.POST("", r.handlers.Keyword.Add)
		keywords.POST("/bulk", r.handlers.Keyword.AddBulk)
		keywords.POST("/suggestions", r.handlers.Keyword.Suggest)
		keywords.POST("/long-tails", r.handlers.Keyword.LongTails)
	}
}
