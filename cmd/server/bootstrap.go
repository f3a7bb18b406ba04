package main

import (
	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/atwlabs/novel-workspace/internal/handlers"
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/internal/session"
	"github.com/atwlabs/novel-workspace/internal/utils"
	"github.com/atwlabs/novel-workspace/pkg/logger"
)

// appServices holds the handlers the router needs.
type appServices struct {
	cfg *config.Config

	healthHandler    *handlers.HealthHandler
	novelHandler     *handlers.NovelHandler
	chapterHandler   *handlers.ChapterHandler
	reviewHandler    *handlers.ReviewHandler
	dashboardHandler *handlers.DashboardHandler
	adminHandler     *handlers.AdminHandler
}

// bootstrap opens the database and builds the service graph.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.Session.Secret)

	if err := models.InitDB(&cfg.Database, cfg.Log.SQLLevel); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	db := models.GetDB()

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if _, err := models.SeedSampleData(db); err != nil {
		logger.Warnf("Failed to seed sample data: %v", err)
	}

	translator := services.NewTranslator(&cfg.Translation)
	usage := services.NewTranslationUsageService(db)
	chapters := services.NewChapterService(db, translator, usage, translator.TargetLanguage())
	reviews := services.NewReviewService(db, session.NewStoreResolver(cfg.Session.GuestFallback))
	catalog := services.NewCatalogService(db, chapters, reviews)
	dashboard := services.NewDashboardService(db, catalog, usage)

	logger.Info().
		Str("provider", translator.Provider()).
		Str("model", translator.Model()).
		Str("target_language", translator.TargetLanguage()).
		Msg("Translator configured")

	return &appServices{
		cfg:              cfg,
		healthHandler:    handlers.NewHealthHandler(db),
		novelHandler:     handlers.NewNovelHandler(catalog),
		chapterHandler:   handlers.NewChapterHandler(chapters),
		reviewHandler:    handlers.NewReviewHandler(reviews),
		dashboardHandler: handlers.NewDashboardHandler(dashboard),
		adminHandler:     handlers.NewAdminHandler(db, chapters),
	}
}

// shutdown releases the database pool.
func (s *appServices) shutdown() {
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close database")
	}
	logger.Info().Msg("Database closed")
}
