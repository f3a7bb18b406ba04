package services

import (
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"gorm.io/gorm"
)

// TranslationUsageService keeps the ledger of translation service calls.
type TranslationUsageService struct {
	db *gorm.DB
}

func NewTranslationUsageService(db *gorm.DB) *TranslationUsageService {
	return &TranslationUsageService{db: db}
}

// Record stores one call. Failures are logged and never surface to the caller.
func (s *TranslationUsageService) Record(entry *models.TranslationLog) {
	if err := s.db.Create(entry).Error; err != nil {
		logger.Warn().Err(err).Str("chapter_id", entry.ChapterID).Msg("failed to record translation usage")
	}
}

type UsageStats struct {
	TotalCalls       int64   `json:"total_calls"`
	SuccessCount     int64   `json:"success_count"`
	FailureCount     int64   `json:"failure_count"`
	SuccessRate      float64 `json:"success_rate"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
	TotalSourceChars int64   `json:"total_source_chars"`
	TotalOutputChars int64   `json:"total_output_chars"`
}

// GetStats aggregates the ledger. since is a unix timestamp; 0 means all time.
func (s *TranslationUsageService) GetStats(since int64) (*UsageStats, error) {
	query := s.db.Model(&models.TranslationLog{})
	if since > 0 {
		query = query.Where("created_at >= ?", since)
	}

	var stats UsageStats
	err := query.Select(
		"COUNT(*) as total_calls, " +
			"COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) as success_count, " +
			"COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) as failure_count, " +
			"COALESCE(AVG(latency_ms), 0) as avg_latency_ms, " +
			"COALESCE(SUM(source_chars), 0) as total_source_chars, " +
			"COALESCE(SUM(output_chars), 0) as total_output_chars",
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalCalls) * 100
	}
	return &stats, nil
}

type ProviderUsage struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Calls        int     `json:"calls"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	SuccessRate  float64 `json:"success_rate"`
}

func (s *TranslationUsageService) GetProviderBreakdown() ([]ProviderUsage, error) {
	var results []ProviderUsage
	err := s.db.Model(&models.TranslationLog{}).Select(
		"provider, model, " +
			"COUNT(*) as calls, " +
			"COALESCE(AVG(latency_ms), 0) as avg_latency_ms, " +
			"COALESCE(AVG(CASE WHEN success THEN 100.0 ELSE 0.0 END), 0) as success_rate",
	).Group("provider, model").Order("calls DESC").Scan(&results).Error
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []ProviderUsage{}
	}
	return results, nil
}
