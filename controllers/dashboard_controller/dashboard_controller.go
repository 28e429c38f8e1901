package dashboard_controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/shared_models"
	"github.com/joy095/roombooking/utils"
)

// SummarySource is the aggregate view the dashboard reads.
type SummarySource interface {
	DashboardSummary(ctx context.Context) (*booking_models.DashboardSummary, error)
}

// DashboardController serves the approver dashboard counters.
type DashboardController struct {
	src SummarySource
}

func NewDashboardController(src SummarySource) *DashboardController {
	return &DashboardController{src: src}
}

// Summary handles GET /dashboard/summary (approver only).
func (dc *DashboardController) Summary(c *gin.Context) {
	role, err := utils.GetUserRoleFromContext(c)
	if err != nil || !shared_models.ApproverRoles()[role] {
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden"})
		return
	}

	summary, err := dc.src.DashboardSummary(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to compute dashboard summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
