package services

import (
	"context"
	"fmt"

	"github.com/atwlabs/novel-workspace/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db      *gorm.DB
	catalog *CatalogService
	usage   *TranslationUsageService
}

func NewDashboardService(db *gorm.DB, catalog *CatalogService, usage *TranslationUsageService) *DashboardService {
	return &DashboardService{db: db, catalog: catalog, usage: usage}
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DashboardStats struct {
	Novels         int64   `json:"novels"`
	Chapters       int64   `json:"chapters"`
	Reviews        int64   `json:"reviews"`
	AverageRating  float64 `json:"average_rating"`
	ExportReady    int64   `json:"export_ready"`
	TotalViewCount int64   `json:"total_view_count"`
}

type DashboardResponse struct {
	Stats         DashboardStats  `json:"stats"`
	StatusCounts  []StatusCount   `json:"status_counts"`
	Novels        []models.Novel  `json:"novels"`
	Usage         *UsageStats     `json:"usage"`
	ProviderUsage []ProviderUsage `json:"provider_usage"`
}

// GetDashboard lists every novel with its chapter statuses plus workspace totals.
func (s *DashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	novels, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	resp := &DashboardResponse{Novels: novels}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Novel{}).Count(&resp.Stats.Novels).Error; err != nil {
		return nil, fmt.Errorf("count novels: %w", err)
	}

	var chapterTotals struct {
		Chapters       int64
		TotalViewCount int64
		ExportReady    int64
	}
	err = db.Model(&models.Chapter{}).Select(
		"COUNT(*) as chapters, " +
			"COALESCE(SUM(view_count), 0) as total_view_count, " +
			"COALESCE(SUM(CASE WHEN content_edited IS NOT NULL THEN 1 ELSE 0 END), 0) as export_ready",
	).Scan(&chapterTotals).Error
	if err != nil {
		return nil, fmt.Errorf("chapter totals: %w", err)
	}
	resp.Stats.Chapters = chapterTotals.Chapters
	resp.Stats.TotalViewCount = chapterTotals.TotalViewCount
	resp.Stats.ExportReady = chapterTotals.ExportReady

	var reviewTotals struct {
		Reviews       int64
		AverageRating float64
	}
	err = db.Model(&models.Review{}).
		Select("COUNT(*) as reviews, COALESCE(AVG(rating), 0) as average_rating").
		Scan(&reviewTotals).Error
	if err != nil {
		return nil, fmt.Errorf("review totals: %w", err)
	}
	resp.Stats.Reviews = reviewTotals.Reviews
	resp.Stats.AverageRating = reviewTotals.AverageRating

	resp.StatusCounts, err = s.statusCounts(db)
	if err != nil {
		return nil, err
	}

	if s.usage != nil {
		if resp.Usage, err = s.usage.GetStats(0); err != nil {
			return nil, fmt.Errorf("usage stats: %w", err)
		}
		if resp.ProviderUsage, err = s.usage.GetProviderBreakdown(); err != nil {
			return nil, fmt.Errorf("provider usage: %w", err)
		}
	}
	return resp, nil
}

// statusCounts reports every known status, including those with no chapters.
func (s *DashboardService) statusCounts(db *gorm.DB) ([]StatusCount, error) {
	var rows []StatusCount
	err := db.Model(&models.Chapter{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}

	byStatus := make(map[string]int64, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r.Count
	}
	counts := make([]StatusCount, 0, len(models.ChapterStatuses()))
	for _, status := range models.ChapterStatuses() {
		counts = append(counts, StatusCount{Status: status, Count: byStatus[status]})
	}
	return counts, nil
}
