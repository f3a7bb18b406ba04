package handlers

import (
	"strings"

	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type ChapterHandler struct {
	chapters *services.ChapterService
}

func NewChapterHandler(chapters *services.ChapterService) *ChapterHandler {
	return &ChapterHandler{chapters: chapters}
}

type ContentRequest struct {
	Content string `json:"content"`
}

// GetByID returns the full chapter for the editor
// GET /api/chapters/:id
func (h *ChapterHandler) GetByID(c *gin.Context) {
	chapter, err := h.chapters.FetchChapter(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRead(c, err, "fetch chapter failed")
		return
	}
	response.Success(c, chapter)
}

// SaveDraft overwrites the working translation
// PUT /api/chapters/:id/draft
func (h *ChapterHandler) SaveDraft(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ActionFailed(c, response.NewBadRequest(err.Error()))
		return
	}

	if err := h.chapters.SaveDraft(c.Request.Context(), c.Param("id"), req.Content); err != nil {
		failAction(c, err, "save draft failed")
		return
	}
	response.ActionOK(c, nil)
}

// MarkReviewed stores the human-edited text
// POST /api/chapters/:id/mark-reviewed
func (h *ChapterHandler) MarkReviewed(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ActionFailed(c, response.NewBadRequest(err.Error()))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.ActionFailed(c, response.NewBadRequest("edited content is required"))
		return
	}

	if err := h.chapters.MarkAsReviewed(c.Request.Context(), c.Param("id"), req.Content); err != nil {
		failAction(c, err, "mark as reviewed failed")
		return
	}
	response.ActionOK(c, nil)
}

// Translate runs the AI translation synchronously
// POST /api/chapters/:id/translate
func (h *ChapterHandler) Translate(c *gin.Context) {
	translation, err := h.chapters.TriggerAITranslation(c.Request.Context(), c.Param("id"))
	if err != nil {
		failAction(c, err, "AI translation failed")
		return
	}
	response.ActionOK(c, gin.H{"translation": translation})
}
