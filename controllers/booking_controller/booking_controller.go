package booking_controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/shared_models"
	"github.com/joy095/roombooking/utils"
)

// BookingReader fetches single bookings and their audit records.
type BookingReader interface {
	GetBookingByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
	ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]booking_models.BookingEvent, error)
}

// BookingController exposes the admission path and the per-user booking
// views over HTTP.
type BookingController struct {
	svc    *BookingService
	ledger Ledger
	reader BookingReader
	now    func() time.Time
}

func NewBookingController(svc *BookingService, ledger Ledger, reader BookingReader) *BookingController {
	return &BookingController{
		svc:    svc,
		ledger: ledger,
		reader: reader,
		now:    time.Now,
	}
}

type CreateBookingRequest struct {
	RoomID      int32  `json:"room_id" binding:"required"`
	SlotID      int32  `json:"slot_id" binding:"required"`
	BookingDate string `json:"booking_date" binding:"required"` // "2006-01-02"
	Reason      string `json:"reason"`
}

// CreateBooking handles POST /bookings.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid request body: " + err.Error()})
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "User not authenticated"})
		return
	}

	date, err := time.Parse("2006-01-02", req.BookingDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "booking_date must be YYYY-MM-DD"})
		return
	}

	booking, err := bc.svc.RequestBooking(c.Request.Context(), userID, req.RoomID, req.SlotID, date, req.Reason)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking_id":     booking.ID,
		"booking_status": booking.Status,
		"message":        "Booking created, awaiting approval",
	})
}

// MyBookingsToday handles GET /my-bookings-today/:userId.
func (bc *BookingController) MyBookingsToday(c *gin.Context) {
	userID, ok := bc.requireSelfOrApprover(c)
	if !ok {
		return
	}

	ids, err := bc.ledger.ListUserActiveOnDate(c.Request.Context(), userID, utils.CivilDate(bc.now()))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_ids": ids})
}

// HasBookingToday handles GET /bookings/user/:userId/today.
func (bc *BookingController) HasBookingToday(c *gin.Context) {
	userID, ok := bc.requireSelfOrApprover(c)
	if !ok {
		return
	}

	has, err := bc.ledger.HasActiveOnDate(c.Request.Context(), userID, utils.CivilDate(bc.now()))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasBooking": has})
}

// UserPending handles GET /bookings/user/:userId/pending.
func (bc *BookingController) UserPending(c *gin.Context) {
	userID, ok := bc.requireSelfOrApprover(c)
	if !ok {
		return
	}

	views, err := bc.ledger.ListUserPending(c.Request.Context(), userID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// UserHistory handles GET /bookings/user/:userId/history.
func (bc *BookingController) UserHistory(c *gin.Context) {
	userID, ok := bc.requireSelfOrApprover(c)
	if !ok {
		return
	}

	views, err := bc.ledger.ListUserHistory(c.Request.Context(), userID)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetBooking handles GET /bookings/:id, returning the booking together
// with its audit trail. Visible to the owner and to approvers.
func (bc *BookingController) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid booking id"})
		return
	}

	callerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "User not authenticated"})
		return
	}

	booking, err := bc.reader.GetBookingByID(c.Request.Context(), bookingID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	if booking.UserID != callerID {
		role, err := utils.GetUserRoleFromContext(c)
		if err != nil || !shared_models.ApproverRoles()[role] {
			c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden"})
			return
		}
	}

	events, err := bc.reader.ListBookingEvents(c.Request.Context(), bookingID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking, "events": events})
}

// PendingRequests handles GET /bookings/requests, the approver queue.
func (bc *BookingController) PendingRequests(c *gin.Context) {
	if !requireApprover(c) {
		return
	}

	views, err := bc.ledger.ListPendingRequests(c.Request.Context())
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GlobalHistory handles GET /bookings/history, the audit trail.
func (bc *BookingController) GlobalHistory(c *gin.Context) {
	if !requireApprover(c) {
		return
	}

	entries, err := bc.ledger.GlobalHistory(c.Request.Context())
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// requireSelfOrApprover parses the :userId path parameter and checks the
// caller is either that user or holds an approver role.
func (bc *BookingController) requireSelfOrApprover(c *gin.Context) (uuid.UUID, bool) {
	target, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid user id"})
		return uuid.Nil, false
	}

	callerID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "User not authenticated"})
		return uuid.Nil, false
	}

	if callerID != target {
		role, err := utils.GetUserRoleFromContext(c)
		if err != nil || !shared_models.ApproverRoles()[role] {
			c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden"})
			return uuid.Nil, false
		}
	}
	return target, true
}

func requireApprover(c *gin.Context) bool {
	role, err := utils.GetUserRoleFromContext(c)
	if err != nil || !shared_models.ApproverRoles()[role] {
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden"})
		return false
	}
	return true
}

// writeBookingError maps the ledger error taxonomy onto HTTP statuses.
// Conflicts are expected, frequent outcomes of normal contention and are
// reported without a stack of logging.
func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking_models.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": err.Error()})
	case errors.Is(err, booking_models.ErrRoomUnavailable):
		c.JSON(http.StatusConflict, gin.H{"code": "ROOM_UNAVAILABLE", "error": "Room is disabled"})
	case errors.Is(err, booking_models.ErrDailyCapExceeded):
		c.JSON(http.StatusConflict, gin.H{"code": "DAILY_CAP_EXCEEDED", "error": "You already have a booking on this date"})
	case errors.Is(err, booking_models.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{"code": "SLOT_CONFLICT", "error": "This time slot is already booked"})
	case errors.Is(err, booking_models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden"})
	case errors.Is(err, booking_models.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Booking not found"})
	default:
		logger.ErrorLogger.Errorf("Storage failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
	}
}
