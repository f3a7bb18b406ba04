package handlers

import (
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/pkg/logger"
	"github.com/atwlabs/novel-workspace/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db       *gorm.DB
	chapters *services.ChapterService
}

func NewAdminHandler(db *gorm.DB, chapters *services.ChapterService) *AdminHandler {
	return &AdminHandler{db: db, chapters: chapters}
}

// Setup drops and recreates every table, then seeds the sample novel.
// POST /api/admin/setup
func (h *AdminHandler) Setup(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	if err := models.ResetSchema(db); err != nil {
		logger.Error().Err(err).Msg("schema reset failed")
		response.ActionFailed(c, response.NewServerError(err.Error()))
		return
	}

	novel, err := models.SeedSampleData(db)
	if err != nil {
		logger.Error().Err(err).Msg("seeding failed")
		response.ActionFailed(c, response.NewServerError(err.Error()))
		return
	}
	response.ActionOK(c, novel)
}

// Publish moves a reviewed chapter to published
// POST /api/admin/chapters/:id/publish
func (h *AdminHandler) Publish(c *gin.Context) {
	if err := h.chapters.Publish(c.Request.Context(), c.Param("id")); err != nil {
		failAction(c, err, "publish failed")
		return
	}
	response.ActionOK(c, nil)
}

// Verify marks a chapter as verified for training
// POST /api/admin/chapters/:id/verify
func (h *AdminHandler) Verify(c *gin.Context) {
	if err := h.chapters.VerifyForTraining(c.Request.Context(), c.Param("id")); err != nil {
		failAction(c, err, "verify failed")
		return
	}
	response.ActionOK(c, nil)
}
