package cancel_book_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/roombooking/controllers/approval_controller"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/utils"
)

// CancelBookController lets a booking's owner withdraw it. The owner check
// lives in the ledger, under the same lock as the status check.
type CancelBookController struct {
	svc *approval_controller.LifecycleService
}

func NewCancelBookController(svc *approval_controller.LifecycleService) *CancelBookController {
	return &CancelBookController{svc: svc}
}

// CancelBooking handles PATCH /bookings/:id/cancel.
func (cc *CancelBookController) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid booking id"})
		return
	}

	ownerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "User not authenticated"})
		return
	}

	b, err := cc.svc.Cancel(c.Request.Context(), bookingID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, booking_models.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "You can only cancel your own bookings"})
		case errors.Is(err, booking_models.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Booking not found or already finalized"})
		default:
			logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", bookingID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		}
		return
	}

	logger.InfoLogger.Infof("Booking %s cancelled by owner %s", b.ID, ownerID)
	c.JSON(http.StatusOK, gin.H{"booking_id": b.ID, "booking_status": b.Status, "message": "Booking cancelled"})
}
