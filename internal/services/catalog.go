package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"gorm.io/gorm"
)

// chapter columns needed for listings; the text bodies are left out.
var chapterSummaryColumns = []string{"id", "novel_id", "title", "status", "chapter_order", "view_count", "published_at", "created_at"}

// CatalogService assembles the read-only views of novels and chapters.
type CatalogService struct {
	db       *gorm.DB
	chapters *ChapterService
	reviews  *ReviewService
}

func NewCatalogService(db *gorm.DB, chapters *ChapterService, reviews *ReviewService) *CatalogService {
	return &CatalogService{db: db, chapters: chapters, reviews: reviews}
}

func orderedChapterSummaries(db *gorm.DB) *gorm.DB {
	return db.Select(chapterSummaryColumns).Order("chapter_order ASC")
}

// Catalog lists every novel with its chapter summaries.
func (s *CatalogService) Catalog(ctx context.Context) ([]models.Novel, error) {
	var novels []models.Novel
	err := s.db.WithContext(ctx).
		Preload("Chapters", orderedChapterSummaries).
		Order("created_at DESC, id DESC").
		Find(&novels).Error
	if err != nil {
		return nil, fmt.Errorf("list novels: %w", err)
	}
	if novels == nil {
		novels = []models.Novel{}
	}
	return novels, nil
}

// TableOfContents returns one novel with its chapters in reading order.
func (s *CatalogService) TableOfContents(ctx context.Context, novelID string) (*models.Novel, error) {
	var novel models.Novel
	err := s.db.WithContext(ctx).
		Preload("Chapters", orderedChapterSummaries).
		First(&novel, "id = ?", novelID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNovelNotFound
		}
		return nil, fmt.Errorf("table of contents: %w", err)
	}
	if novel.Chapters == nil {
		novel.Chapters = []models.Chapter{}
	}
	return &novel, nil
}

type ChapterRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

type ReadingView struct {
	ChapterID  string          `json:"chapter_id"`
	Title      string          `json:"title"`
	Order      int             `json:"order"`
	NovelID    string          `json:"novel_id"`
	NovelTitle string          `json:"novel_title"`
	Content    string          `json:"content"`
	ViewCount  int             `json:"view_count"`
	Prev       *ChapterRef     `json:"prev"`
	Next       *ChapterRef     `json:"next"`
	Reviews    []models.Review `json:"reviews"`
	Rating     *RatingSummary  `json:"rating"`
}

// ReadingView builds the reader pane for a chapter and counts the view.
func (s *CatalogService) ReadingView(ctx context.Context, chapterID string) (*ReadingView, error) {
	var chapter models.Chapter
	err := s.db.WithContext(ctx).Preload("Novel").First(&chapter, "id = ?", chapterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("reading view: %w", err)
	}

	view := &ReadingView{
		ChapterID: chapter.ID,
		Title:     chapter.Title,
		Order:     chapter.Order,
		NovelID:   chapter.NovelID,
		Content:   chapter.DisplayContent(),
		ViewCount: chapter.ViewCount + 1,
	}
	if chapter.Novel != nil {
		view.NovelTitle = chapter.Novel.Title
	}

	if view.Prev, err = s.neighbour(ctx, chapter.NovelID, chapter.Order, "<", "chapter_order DESC"); err != nil {
		return nil, err
	}
	if view.Next, err = s.neighbour(ctx, chapter.NovelID, chapter.Order, ">", "chapter_order ASC"); err != nil {
		return nil, err
	}
	if view.Reviews, err = s.reviews.ListReviews(ctx, chapter.ID); err != nil {
		return nil, err
	}
	if view.Rating, err = s.reviews.RatingSummary(ctx, chapter.ID); err != nil {
		return nil, err
	}

	if err := s.chapters.IncrementViews(ctx, chapter.ID); err != nil {
		logger.Warn().Err(err).Str("chapter_id", chapter.ID).Msg("failed to count chapter view")
		view.ViewCount = chapter.ViewCount
	}
	return view, nil
}

// neighbour finds the nearest chapter of the same novel on one side of order.
func (s *CatalogService) neighbour(ctx context.Context, novelID string, order int, cmp, sort string) (*ChapterRef, error) {
	var chapters []models.Chapter
	err := s.db.WithContext(ctx).
		Select("id", "title", "chapter_order").
		Where("novel_id = ? AND chapter_order "+cmp+" ?", novelID, order).
		Order(sort).
		Limit(1).
		Find(&chapters).Error
	if err != nil {
		return nil, fmt.Errorf("chapter navigation: %w", err)
	}
	if len(chapters) == 0 {
		return nil, nil
	}
	return &ChapterRef{ID: chapters[0].ID, Title: chapters[0].Title, Order: chapters[0].Order}, nil
}
