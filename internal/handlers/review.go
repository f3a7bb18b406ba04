package handlers

import (
	"github.com/atwlabs/novel-workspace/internal/middleware"
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// List returns the chapter's reviews newest first
// GET /api/chapters/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviews.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRead(c, err, "list reviews failed")
		return
	}
	response.Success(c, reviews)
}

// Submit appends a review for the calling identity
// POST /api/chapters/:id/reviews
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ActionFailed(c, response.NewBadRequest("rating is required"))
		return
	}

	review, err := h.reviews.SubmitReview(
		c.Request.Context(),
		middleware.GetIdentity(c),
		c.Param("id"),
		req.Rating,
		req.Comment,
	)
	if err != nil {
		failAction(c, err, "submit review failed")
		return
	}
	response.ActionOK(c, review)
}
