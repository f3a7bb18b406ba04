package main

import (
	"github.com/atwlabs/novel-workspace/internal/middleware"
	"github.com/atwlabs/novel-workspace/internal/session"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.AllowOrigins))

	// AI translation calls are paid for per token
	translateLimiter := middleware.NewRateLimiter(svc.cfg.Server.TranslateRPS, svc.cfg.Server.TranslateBurst)

	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	api.Use(middleware.Identify(session.TokenResolver{}))
	{
		// Reader
		api.GET("/novels", svc.novelHandler.List)
		api.GET("/novels/:id", svc.novelHandler.TableOfContents)
		api.GET("/read/:chapterId", svc.novelHandler.Read)

		// Editor
		api.GET("/dashboard", svc.dashboardHandler.GetDashboard)
		api.GET("/chapters/:id", svc.chapterHandler.GetByID)
		api.PUT("/chapters/:id/draft", svc.chapterHandler.SaveDraft)
		api.POST("/chapters/:id/mark-reviewed", svc.chapterHandler.MarkReviewed)
		api.POST("/chapters/:id/translate", translateLimiter.Middleware(), svc.chapterHandler.Translate)

		// Reviews
		api.GET("/chapters/:id/reviews", svc.reviewHandler.List)
		api.POST("/chapters/:id/reviews", svc.reviewHandler.Submit)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminRequired(), middleware.AuditLog())
		{
			admin.POST("/setup", svc.adminHandler.Setup)
			admin.POST("/chapters/:id/publish", svc.adminHandler.Publish)
			admin.POST("/chapters/:id/verify", svc.adminHandler.Verify)
		}
	}
}
