package approval_controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/shared_models"
	"github.com/joy095/roombooking/utils"
	"github.com/redis/go-redis/v9"
)

// Ledger is the slice of the booking store the lifecycle path needs. Each
// transition is a single conditional update inside the store; the service
// never reads status first and updates second.
type Ledger interface {
	ApprovePending(ctx context.Context, bookingID, approverID uuid.UUID) (*booking_models.Booking, error)
	RejectPending(ctx context.Context, bookingID, approverID uuid.UUID, reason string) (*booking_models.Booking, error)
	CancelOwned(ctx context.Context, bookingID, ownerID uuid.UUID) (*booking_models.Booking, shared_models.BookingStatus, error)
}

// Notifier delivers best-effort status notifications. Failures are logged
// and never surfaced to the caller.
type Notifier interface {
	BookingStatusChanged(ctx context.Context, b *booking_models.Booking, action string)
}

// LifecycleService owns the pending -> approved/rejected/cancelled
// transitions. The ledger is the source of truth; the Redis occupancy
// marker is an ephemeral convenience and may be nil.
type LifecycleService struct {
	ledger        Ledger
	approverRoles map[string]bool
	rdb           *redis.Client
	notifier      Notifier
}

func NewLifecycleService(ledger Ledger, rdb *redis.Client, notifier Notifier) *LifecycleService {
	return &LifecycleService{
		ledger:        ledger,
		approverRoles: shared_models.ApproverRoles(),
		rdb:           rdb,
		notifier:      notifier,
	}
}

// Approve moves a pending booking to approved. Exactly one of two racing
// approvers wins; the loser sees ErrBookingNotFound from the ledger.
func (s *LifecycleService) Approve(ctx context.Context, bookingID, approverID uuid.UUID, approverRole string) (*booking_models.Booking, error) {
	if !s.approverRoles[approverRole] {
		return nil, fmt.Errorf("%w: role %s cannot approve", booking_models.ErrForbidden, approverRole)
	}

	b, err := s.ledger.ApprovePending(ctx, bookingID, approverID)
	if err != nil {
		return nil, err
	}

	s.markOccupied(ctx, b)
	s.notify(ctx, b, "approve")
	return b, nil
}

// Reject moves a pending booking to rejected, recording the reason.
func (s *LifecycleService) Reject(ctx context.Context, bookingID, approverID uuid.UUID, approverRole, reason string) (*booking_models.Booking, error) {
	if !s.approverRoles[approverRole] {
		return nil, fmt.Errorf("%w: role %s cannot reject", booking_models.ErrForbidden, approverRole)
	}

	b, err := s.ledger.RejectPending(ctx, bookingID, approverID, reason)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b, "reject")
	return b, nil
}

// Cancel lets the owner withdraw a pending or approved booking. Cancelling
// an approved booking also releases its occupancy marker.
func (s *LifecycleService) Cancel(ctx context.Context, bookingID, ownerID uuid.UUID) (*booking_models.Booking, error) {
	b, prior, err := s.ledger.CancelOwned(ctx, bookingID, ownerID)
	if err != nil {
		return nil, err
	}

	if prior == shared_models.BookingStatusApproved {
		s.releaseOccupied(ctx, b)
	}
	s.notify(ctx, b, "cancel")
	return b, nil
}

func occupancyKey(b *booking_models.Booking) string {
	return fmt.Sprintf("room_occupancy:%d:%d:%s", b.RoomID, b.SlotID, b.BookingDate.Format("2006-01-02"))
}

// markOccupied sets the ephemeral occupancy marker. The ledger remains
// authoritative, so a Redis failure only costs the fast path.
func (s *LifecycleService) markOccupied(ctx context.Context, b *booking_models.Booking) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, occupancyKey(b), b.ID.String(), 24*time.Hour).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to set occupancy marker for booking %s: %v", b.ID, err)
	}
}

func (s *LifecycleService) releaseOccupied(ctx context.Context, b *booking_models.Booking) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, occupancyKey(b)).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to release occupancy marker for booking %s: %v", b.ID, err)
	}
}

func (s *LifecycleService) notify(ctx context.Context, b *booking_models.Booking, action string) {
	if s.notifier == nil {
		return
	}
	s.notifier.BookingStatusChanged(ctx, b, action)
}

// ApprovalController exposes the approver transitions over HTTP.
type ApprovalController struct {
	svc *LifecycleService
}

func NewApprovalController(svc *LifecycleService) *ApprovalController {
	return &ApprovalController{svc: svc}
}

type RejectBookingRequest struct {
	RejectReason string `json:"reject_reason"`
}

// ApproveBooking handles PATCH /bookings/:id/approve.
func (ac *ApprovalController) ApproveBooking(c *gin.Context) {
	bookingID, approverID, role, ok := transitionParams(c)
	if !ok {
		return
	}

	b, err := ac.svc.Approve(c.Request.Context(), bookingID, approverID, role)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}

	logger.InfoLogger.Infof("Booking %s approved by %s", b.ID, approverID)
	c.JSON(http.StatusOK, gin.H{"booking_id": b.ID, "booking_status": b.Status, "message": "Booking approved"})
}

// RejectBooking handles PATCH /bookings/:id/reject.
func (ac *ApprovalController) RejectBooking(c *gin.Context) {
	bookingID, approverID, role, ok := transitionParams(c)
	if !ok {
		return
	}

	// The reason is optional; an empty or missing body is fine.
	var req RejectBookingRequest
	_ = c.ShouldBindJSON(&req)

	b, err := ac.svc.Reject(c.Request.Context(), bookingID, approverID, role, req.RejectReason)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}

	logger.InfoLogger.Infof("Booking %s rejected by %s", b.ID, approverID)
	c.JSON(http.StatusOK, gin.H{"booking_id": b.ID, "booking_status": b.Status, "message": "Booking rejected"})
}

func transitionParams(c *gin.Context) (bookingID, actorID uuid.UUID, role string, ok bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid booking id"})
		return uuid.Nil, uuid.Nil, "", false
	}

	actorID, err = utils.GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "User not authenticated"})
		return uuid.Nil, uuid.Nil, "", false
	}

	role, err = utils.GetUserRoleFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "User not authenticated"})
		return uuid.Nil, uuid.Nil, "", false
	}
	return bookingID, actorID, role, true
}

func writeLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking_models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Forbidden"})
	case errors.Is(err, booking_models.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Booking not found or not pending"})
	default:
		logger.ErrorLogger.Errorf("Booking transition failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
	}
}
