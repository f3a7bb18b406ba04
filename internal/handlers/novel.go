package handlers

import (
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type NovelHandler struct {
	catalog *services.CatalogService
}

func NewNovelHandler(catalog *services.CatalogService) *NovelHandler {
	return &NovelHandler{catalog: catalog}
}

// List returns every novel with its chapter list
// GET /api/novels
func (h *NovelHandler) List(c *gin.Context) {
	novels, err := h.catalog.Catalog(c.Request.Context())
	if err != nil {
		failRead(c, err, "list novels failed")
		return
	}
	response.Success(c, novels)
}

// TableOfContents returns a novel and its chapters in reading order
// GET /api/novels/:id
func (h *NovelHandler) TableOfContents(c *gin.Context) {
	novel, err := h.catalog.TableOfContents(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRead(c, err, "table of contents failed")
		return
	}
	response.Success(c, novel)
}

// Read returns the reading pane for a chapter
// GET /api/read/:chapterId
func (h *NovelHandler) Read(c *gin.Context) {
	view, err := h.catalog.ReadingView(c.Request.Context(), c.Param("chapterId"))
	if err != nil {
		failRead(c, err, "reading view failed")
		return
	}
	response.Success(c, view)
}
