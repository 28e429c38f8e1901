package booking_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/shared_models"
)

// Booking is a reservation of one room for one time slot on one civil date.
type Booking struct {
	ID           uuid.UUID                   `json:"booking_id"`
	RoomID       int32                       `json:"room_id"`
	SlotID       int32                       `json:"slot_id"`
	UserID       uuid.UUID                   `json:"user_id"`
	BookingDate  time.Time                   `json:"booking_date"`
	Reason       *string                     `json:"reason,omitempty"`
	Status       shared_models.BookingStatus `json:"booking_status"`
	RejectReason *string                     `json:"reject_reason,omitempty"`
	ApprovedBy   *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time                  `json:"approved_at,omitempty"`
	RejectedAt   *time.Time                  `json:"rejected_at,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// BookingEvent is one immutable audit record per status-changing transition.
// Events are append-only; they are written in the same transaction as the
// status change they describe.
type BookingEvent struct {
	ID          uuid.UUID                    `json:"id"`
	BookingID   uuid.UUID                    `json:"booking_id"`
	ActorID     uuid.UUID                    `json:"actor_id"`
	Action      string                       `json:"action"` // create, approve, reject, cancel
	PriorStatus *shared_models.BookingStatus `json:"prior_status,omitempty"`
	NewStatus   shared_models.BookingStatus  `json:"new_status"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// Store is the booking ledger over a pgx pool. It is the system of record
// for bookings and their audit trail; all invariant enforcement happens
// inside single transactions here, backed by the partial unique indexes
// bookings_active_slot_key and bookings_active_user_day_key.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const bookingColumns = `
	id, room_id, slot_id, user_id, booking_date, reason, status,
	reject_reason, approved_by, approved_at, rejected_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	b := &Booking{}
	var rawStatus string
	err := row.Scan(
		&b.ID, &b.RoomID, &b.SlotID, &b.UserID, &b.BookingDate, &b.Reason, &rawStatus,
		&b.RejectReason, &b.ApprovedBy, &b.ApprovedAt, &b.RejectedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status, err = shared_models.ParseBookingStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreatePending performs the atomic admission insert. The uniqueness of an
// active booking per (room, slot, date) and per (user, date) is enforced by
// the database's partial unique indexes; the SELECTs ahead of the INSERT
// only make the returned error deterministic when both rules are violated
// at once. Under a race the INSERT itself fails and is mapped by constraint
// name, so two concurrent requests can never both succeed.
func (s *Store) CreatePending(ctx context.Context, b *Booking) (*Booking, error) {
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
		}
		b.ID = id
	}
	now := time.Now()
	b.Status = shared_models.BookingStatusPending
	b.CreatedAt = now
	b.UpdatedAt = now

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND booking_date = $2 AND status IN ('pending', 'approved')
		)`, b.UserID, b.BookingDate).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check daily cap: %w", err)
	}
	if exists {
		return nil, ErrDailyCapExceeded
	}

	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1 AND slot_id = $2 AND booking_date = $3
			  AND status IN ('pending', 'approved')
		)`, b.RoomID, b.SlotID, b.BookingDate).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if exists {
		return nil, ErrSlotConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, room_id, slot_id, user_id, booking_date, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8)`,
		b.ID, b.RoomID, b.SlotID, b.UserID, b.BookingDate, b.Reason, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := appendEvent(ctx, tx, &BookingEvent{
		BookingID: b.ID,
		ActorID:   b.UserID,
		Action:    "create",
		NewStatus: shared_models.BookingStatusPending,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapUniqueViolation(err)
	}

	logger.InfoLogger.Infof("Booking %s created (room %d, slot %d, %s)",
		b.ID, b.RoomID, b.SlotID, b.BookingDate.Format("2006-01-02"))
	return b, nil
}

// mapUniqueViolation translates a partial unique index violation into the
// invariant it protects.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "bookings_active_user_day_key":
			return ErrDailyCapExceeded
		case "bookings_active_slot_key":
			return ErrSlotConflict
		}
	}
	return fmt.Errorf("failed to create booking: %w", err)
}

// ApprovePending transitions pending -> approved. The update is keyed on
// id AND status so a concurrent reject or cancel makes this a no-op; in
// that case ErrBookingNotFound is returned, covering both a missing booking
// and one that already left pending.
func (s *Store) ApprovePending(ctx context.Context, bookingID, approverID uuid.UUID) (*Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'approved', approved_by = $2, approved_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING`+bookingColumns, bookingID, approverID)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to approve booking: %w", err)
	}

	prior := shared_models.BookingStatusPending
	if err := appendEvent(ctx, tx, &BookingEvent{
		BookingID:   b.ID,
		ActorID:     approverID,
		Action:      "approve",
		PriorStatus: &prior,
		NewStatus:   shared_models.BookingStatusApproved,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s approved by %s", b.ID, approverID)
	return b, nil
}

// RejectPending transitions pending -> rejected with the same concurrency
// discipline as ApprovePending.
func (s *Store) RejectPending(ctx context.Context, bookingID, approverID uuid.UUID, reason string) (*Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var rejectReason *string
	if reason != "" {
		rejectReason = &reason
	}

	row := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'rejected', reject_reason = $2, approved_by = $3, rejected_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING`+bookingColumns, bookingID, rejectReason, approverID)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to reject booking: %w", err)
	}

	prior := shared_models.BookingStatusPending
	if err := appendEvent(ctx, tx, &BookingEvent{
		BookingID:   b.ID,
		ActorID:     approverID,
		Action:      "reject",
		PriorStatus: &prior,
		NewStatus:   shared_models.BookingStatusRejected,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s rejected by %s", b.ID, approverID)
	return b, nil
}

// CancelOwned transitions pending|approved -> cancelled on behalf of the
// requester. The row is locked first so ownership and status are judged
// against the current state, not a stale read. Returns the prior status so
// the caller can release the occupancy marker of an approved booking.
func (s *Store) CancelOwned(ctx context.Context, bookingID, ownerID uuid.UUID) (*Booking, shared_models.BookingStatus, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT`+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, bookingID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrBookingNotFound
		}
		return nil, "", fmt.Errorf("failed to fetch booking for cancel: %w", err)
	}

	if b.UserID != ownerID {
		return nil, "", ErrForbidden
	}
	if !b.Status.Active() {
		return nil, "", ErrBookingNotFound
	}

	prior := b.Status
	if _, err := tx.Exec(ctx, `
		UPDATE bookings SET status = 'cancelled', updated_at = now() WHERE id = $1`, bookingID); err != nil {
		return nil, "", fmt.Errorf("failed to cancel booking: %w", err)
	}
	b.Status = shared_models.BookingStatusCancelled

	if err := appendEvent(ctx, tx, &BookingEvent{
		BookingID:   b.ID,
		ActorID:     ownerID,
		Action:      "cancel",
		PriorStatus: &prior,
		NewStatus:   shared_models.BookingStatusCancelled,
	}); err != nil {
		return nil, "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to commit cancellation: %w", err)
	}

	logger.InfoLogger.Infof("Booking %s cancelled by %s (was %s)", b.ID, ownerID, prior)
	return b, prior, nil
}

func appendEvent(ctx context.Context, tx pgx.Tx, ev *BookingEvent) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID for event: %w", err)
	}
	ev.ID = id
	ev.CreatedAt = time.Now()

	var prior *string
	if ev.PriorStatus != nil {
		p := string(*ev.PriorStatus)
		prior = &p
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_events (id, booking_id, actor_id, action, prior_status, new_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.ID, ev.BookingID, ev.ActorID, ev.Action, prior, string(ev.NewStatus), ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append booking event: %w", err)
	}
	return nil
}

// GetBookingByID fetches a single booking.
func (s *Store) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT`+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("database error fetching booking: %w", err)
	}
	return b, nil
}
