package booking_controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/room_models"
	"github.com/joy095/roombooking/models/slot_models"
	"github.com/joy095/roombooking/utils"
)

// Ledger is the slice of the booking store the admission path needs. The
// conflict checks and the insert behind CreatePending are one atomic unit;
// the service never does its own read-then-write on booking state.
type Ledger interface {
	CreatePending(ctx context.Context, b *booking_models.Booking) (*booking_models.Booking, error)
	BookedSlotIDs(ctx context.Context, roomID int32, date time.Time) ([]int32, error)
	ListUserActiveOnDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]uuid.UUID, error)
	HasActiveOnDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error)
	ListUserPending(ctx context.Context, userID uuid.UUID) ([]booking_models.UserBookingView, error)
	ListUserHistory(ctx context.Context, userID uuid.UUID) ([]booking_models.UserBookingView, error)
	ListPendingRequests(ctx context.Context) ([]booking_models.PendingRequestView, error)
	GlobalHistory(ctx context.Context) ([]booking_models.HistoryEntry, error)
}

// RoomCatalog and SlotCatalog are read-only views of the resource catalog.
type RoomCatalog interface {
	GetRoomByID(ctx context.Context, id int32) (*room_models.Room, error)
}

type SlotCatalog interface {
	GetTimeSlotByID(ctx context.Context, id int32) (*slot_models.TimeSlot, error)
}

// BookingService decides whether a new booking request may be created. It
// holds no state of its own; every decision reads fresh ledger state.
type BookingService struct {
	ledger Ledger
	rooms  RoomCatalog
	slots  SlotCatalog
	now    func() time.Time
}

func NewBookingService(ledger Ledger, rooms RoomCatalog, slots SlotCatalog) *BookingService {
	return &BookingService{
		ledger: ledger,
		rooms:  rooms,
		slots:  slots,
		now:    time.Now,
	}
}

// RequestBooking validates a booking request and performs the atomic create.
// Precondition order: catalog existence and room status first, then the
// date, then the ledger's combined daily-cap and slot-exclusivity check
// inside CreatePending. On failure nothing is written.
//
// Conflict checks always use the booking's own date, never "today"; future
// dates are permitted.
func (s *BookingService) RequestBooking(ctx context.Context, userID uuid.UUID, roomID, slotID int32, date time.Time, reason string) (*booking_models.Booking, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: requester is required", booking_models.ErrInvalidRequest)
	}

	room, err := s.rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, room_models.ErrRoomNotFound) {
			return nil, fmt.Errorf("%w: room %d does not exist", booking_models.ErrInvalidRequest, roomID)
		}
		return nil, err
	}
	if room.Status == room_models.RoomStatusDisabled {
		return nil, fmt.Errorf("%w: room %d", booking_models.ErrRoomUnavailable, roomID)
	}

	if _, err := s.slots.GetTimeSlotByID(ctx, slotID); err != nil {
		if errors.Is(err, slot_models.ErrSlotNotFound) {
			return nil, fmt.Errorf("%w: slot %d does not exist", booking_models.ErrInvalidRequest, slotID)
		}
		return nil, err
	}

	if date.IsZero() {
		return nil, fmt.Errorf("%w: booking date is required", booking_models.ErrInvalidRequest)
	}

	b := &booking_models.Booking{
		RoomID:      roomID,
		SlotID:      slotID,
		UserID:      userID,
		BookingDate: utils.CivilDate(date),
	}
	if reason != "" {
		b.Reason = &reason
	}

	created, err := s.ledger.CreatePending(ctx, b)
	if err != nil {
		logger.WarnLogger.Warnf("Booking request by %s for room %d slot %d on %s refused: %v",
			userID, roomID, slotID, date.Format("2006-01-02"), err)
		return nil, err
	}
	return created, nil
}

// Availability returns the booked slot ids for a room on a date. A zero
// date means today.
func (s *BookingService) Availability(ctx context.Context, roomID int32, date time.Time) ([]int32, error) {
	if _, err := s.rooms.GetRoomByID(ctx, roomID); err != nil {
		if errors.Is(err, room_models.ErrRoomNotFound) {
			return nil, fmt.Errorf("%w: room %d does not exist", booking_models.ErrInvalidRequest, roomID)
		}
		return nil, err
	}
	if date.IsZero() {
		date = s.now()
	}
	return s.ledger.BookedSlotIDs(ctx, roomID, utils.CivilDate(date))
}
