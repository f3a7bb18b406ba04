package handlers

import (
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/pkg/response"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
}

func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard returns novels with chapter statuses and workspace totals
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	resp, err := h.dashboard.GetDashboard(c.Request.Context())
	if err != nil {
		failRead(c, err, "dashboard failed")
		return
	}
	response.Success(c, resp)
}
