package booking_models

import "errors"

// Ledger error taxonomy. Controllers map these to HTTP statuses; nothing in
// the core retries or swallows them.
var (
	ErrInvalidRequest   = errors.New("invalid booking request")
	ErrRoomUnavailable  = errors.New("room is disabled")
	ErrDailyCapExceeded = errors.New("user already has an active booking on this date")
	ErrSlotConflict     = errors.New("slot is already booked for this date")
	ErrForbidden        = errors.New("operation not permitted for this user")
	ErrBookingNotFound  = errors.New("booking not found")
)
