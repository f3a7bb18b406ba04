package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"gorm.io/gorm"
)

// ChapterService owns every write to a chapter's content and status.
type ChapterService struct {
	db             *gorm.DB
	translator     Translator
	usage          *TranslationUsageService
	targetLanguage string
}

func NewChapterService(db *gorm.DB, translator Translator, usage *TranslationUsageService, targetLanguage string) *ChapterService {
	if targetLanguage == "" {
		targetLanguage = "Burmese"
	}
	return &ChapterService{
		db:             db,
		translator:     translator,
		usage:          usage,
		targetLanguage: targetLanguage,
	}
}

func (s *ChapterService) FetchChapter(ctx context.Context, chapterID string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := s.db.WithContext(ctx).First(&chapter, "id = ?", chapterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("fetch chapter: %w", err)
	}
	return &chapter, nil
}

// SaveDraft overwrites the working translation. Status is left as is.
func (s *ChapterService) SaveDraft(ctx context.Context, chapterID, content string) error {
	result := s.db.WithContext(ctx).Model(&models.Chapter{}).
		Where("id = ?", chapterID).
		Update("content_translated", content)
	if result.Error != nil {
		return fmt.Errorf("save draft: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// MySQL reports zero rows when the value is unchanged
		if _, err := s.currentState(ctx, chapterID); err != nil {
			return err
		}
	}
	return nil
}

// MarkAsReviewed stores the golden text and moves the chapter to human_reviewing.
func (s *ChapterService) MarkAsReviewed(ctx context.Context, chapterID, content string) error {
	now := time.Now().Unix()
	return s.transition(ctx, chapterID, models.StatusHumanReviewing, map[string]interface{}{
		"content_edited": content,
		"published_at":   now,
	})
}

func (s *ChapterService) Publish(ctx context.Context, chapterID string) error {
	now := time.Now().Unix()
	return s.transition(ctx, chapterID, models.StatusPublished, map[string]interface{}{
		"published_at": gorm.Expr("COALESCE(published_at, ?)", now),
	})
}

func (s *ChapterService) VerifyForTraining(ctx context.Context, chapterID string) error {
	return s.transition(ctx, chapterID, models.StatusVerifiedForTraining, map[string]interface{}{})
}

// IncrementViews bumps the view counter in a single statement.
func (s *ChapterService) IncrementViews(ctx context.Context, chapterID string) error {
	result := s.db.WithContext(ctx).Model(&models.Chapter{}).
		Where("id = ?", chapterID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("increment views: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChapterNotFound
	}
	return nil
}

// transition applies updates and the target status in one conditional UPDATE,
// matching only rows whose current status may move to target. Draft-gated
// sources match only while content_translated is non-empty.
func (s *ChapterService) transition(ctx context.Context, chapterID, target string, updates map[string]interface{}) error {
	updates["status"] = target

	query := s.db.WithContext(ctx).Model(&models.Chapter{}).Where("id = ?", chapterID)
	if gated := models.DraftSourcesFor(target); len(gated) > 0 {
		query = query.Where(
			"(status IN ? OR (status IN ? AND content_translated IS NOT NULL AND content_translated <> ''))",
			models.SourcesFor(target), gated,
		)
	} else {
		query = query.Where("status IN ?", models.SourcesFor(target))
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update chapter: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	state, err := s.currentState(ctx, chapterID)
	if err != nil {
		return err
	}
	if models.CanTransitionWithDraft(state.Status, target, state.hasDraft()) {
		// row matched but nothing changed
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, state.Status, target)
}

type chapterState struct {
	Status            string
	ContentTranslated *string
}

func (c chapterState) hasDraft() bool {
	return c.ContentTranslated != nil && *c.ContentTranslated != ""
}

func (s *ChapterService) currentState(ctx context.Context, chapterID string) (*chapterState, error) {
	var rows []chapterState
	err := s.db.WithContext(ctx).Model(&models.Chapter{}).
		Select("status", "content_translated").
		Where("id = ?", chapterID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lookup chapter: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrChapterNotFound
	}
	return &rows[0], nil
}

type describer interface {
	Provider() string
	Model() string
}

// TriggerAITranslation translates the original text synchronously and stores it
// as the AI draft. On any failure the chapter is left untouched.
func (s *ChapterService) TriggerAITranslation(ctx context.Context, chapterID string) (string, error) {
	chapter, err := s.FetchChapter(ctx, chapterID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(chapter.ContentOriginal) == "" {
		return "", ErrMissingOriginal
	}
	if !models.CanTransition(chapter.Status, models.StatusAITranslated) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, chapter.Status, models.StatusAITranslated)
	}

	start := time.Now()
	translated, err := s.translator.Translate(ctx, chapter.ContentOriginal, s.targetLanguage)
	s.recordUsage(chapter, translated, time.Since(start), err)
	if err != nil {
		logger.Error().Err(err).Str("chapter_id", chapterID).Msg("AI translation failed")
		return "", err
	}

	if err := s.transition(ctx, chapterID, models.StatusAITranslated, map[string]interface{}{
		"content_translated": translated,
	}); err != nil {
		return "", err
	}

	logger.Info().
		Str("chapter_id", chapterID).
		Int("chars", len(translated)).
		Dur("latency", time.Since(start)).
		Msg("chapter translated")
	return translated, nil
}

func (s *ChapterService) recordUsage(chapter *models.Chapter, output string, latency time.Duration, callErr error) {
	if s.usage == nil {
		return
	}
	entry := &models.TranslationLog{
		ChapterID:   chapter.ID,
		SourceChars: len([]rune(chapter.ContentOriginal)),
		OutputChars: len([]rune(output)),
		LatencyMs:   latency.Milliseconds(),
		Success:     callErr == nil,
	}
	if d, ok := s.translator.(describer); ok {
		entry.Provider = d.Provider()
		entry.Model = d.Model()
	}
	if callErr != nil {
		entry.ErrorMessage = truncateRunes(callErr.Error(), maxErrorMessageRunes)
	}
	s.usage.Record(entry)
}

const maxErrorMessageRunes = 500

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
