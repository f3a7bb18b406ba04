package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/session"
	"gorm.io/gorm"
)

// ReviewService appends and lists chapter reviews.
type ReviewService struct {
	db       *gorm.DB
	resolver session.Resolver
}

func NewReviewService(db *gorm.DB, resolver session.Resolver) *ReviewService {
	return &ReviewService{db: db, resolver: resolver}
}

// SubmitReview resolves the reviewer and inserts the review in one transaction.
func (s *ReviewService) SubmitReview(ctx context.Context, identity session.Identity, chapterID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	var review *models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Chapter{}).Where("id = ?", chapterID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrChapterNotFound
		}

		user, err := s.resolver.ResolveUser(tx, identity)
		if err != nil {
			return err
		}

		review = &models.Review{
			UserID:    user.ID,
			ChapterID: chapterID,
			Rating:    rating,
		}
		if c := strings.TrimSpace(comment); c != "" {
			review.Comment = &c
		}
		return tx.Create(review).Error
	})
	if err != nil {
		if errors.Is(err, ErrChapterNotFound) ||
			errors.Is(err, session.ErrUnknownUser) ||
			errors.Is(err, session.ErrIdentityRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("submit review: %w", err)
	}
	return review, nil
}

// ListReviews returns the chapter's reviews newest first.
func (s *ReviewService) ListReviews(ctx context.Context, chapterID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

type RatingSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

func (s *ReviewService) RatingSummary(ctx context.Context, chapterID string) (*RatingSummary, error) {
	var summary RatingSummary
	err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("chapter_id = ?", chapterID).
		Select("COUNT(*) as count, COALESCE(AVG(rating), 0) as average").
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	return &summary, nil
}
