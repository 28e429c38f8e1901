package booking_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/shared_models"
)

// Read projections over the ledger. These apply status/date filtering only;
// no business rule lives here, and nothing is cached between the write path
// and these reads.

// UserBookingView is one row of a per-user booking list, joined with the
// room and slot catalog for display.
type UserBookingView struct {
	BookingID      uuid.UUID                   `json:"booking_id"`
	RoomID         int32                       `json:"room_id"`
	SlotID         int32                       `json:"slot_id"`
	Status         shared_models.BookingStatus `json:"booking_status"`
	BookingDate    time.Time                   `json:"booking_date"`
	RoomName       string                      `json:"room_name"`
	RoomImage      string                      `json:"room_image"`
	Capacity       int                         `json:"capacity"`
	SlotName       string                      `json:"slot_name"`
	StartTime      string                      `json:"start_time"`
	EndTime        string                      `json:"end_time"`
	RejectReason   *string                     `json:"reject_reason,omitempty"`
	ApprovedByName *string                     `json:"approved_by_name,omitempty"`
}

// PendingRequestView is one row of the approver queue.
type PendingRequestView struct {
	BookingID   uuid.UUID                   `json:"booking_id"`
	Status      shared_models.BookingStatus `json:"booking_status"`
	BookingDate time.Time                   `json:"booking_date"`
	RoomName    string                      `json:"room_name"`
	RoomImage   string                      `json:"room_image"`
	UserName    string                      `json:"user_name"`
	SlotName    string                      `json:"slot_name"`
	StartTime   string                      `json:"start_time"`
	EndTime     string                      `json:"end_time"`
}

// HistoryEntry is one audit-trail row, derived from booking_events.
type HistoryEntry struct {
	BookingID    uuid.UUID                   `json:"booking_id"`
	RoomName     string                      `json:"room_name"`
	RoomImage    string                      `json:"room_image"`
	SlotName     string                      `json:"slot_name"`
	BookingDate  time.Time                   `json:"booking_date"`
	Action       string                      `json:"action"`
	NewStatus    shared_models.BookingStatus `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	RejectReason *string                     `json:"reject_reason,omitempty"`
	BookedBy     string                      `json:"booked_by"`
	ActorName    string                      `json:"actor_name"`
}

// DashboardSummary carries the aggregate counts for the admin dashboard.
type DashboardSummary struct {
	FreeRooms        int64 `json:"freeRooms"`
	DisabledRooms    int64 `json:"disabledRooms"`
	PendingBookings  int64 `json:"pendingBookings"`
	ApprovedBookings int64 `json:"reservedBookings"`
}

// BookedSlotIDs returns the slot ids with an active booking for a room on a
// date. Everything else is free.
func (s *Store) BookedSlotIDs(ctx context.Context, roomID int32, date time.Time) ([]int32, error) {
	rows, err := s.db.Query(ctx, `
		SELECT slot_id FROM bookings
		WHERE room_id = $1 AND booking_date = $2 AND status IN ('pending', 'approved')`,
		roomID, date)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list booked slots for room %d: %v", roomID, err)
		return nil, fmt.Errorf("database error listing booked slots: %w", err)
	}
	defer rows.Close()

	ids := []int32{}
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan slot id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListUserActiveOnDate returns the ids of a user's active bookings on a
// date. Under the daily cap this is at most one element.
func (s *Store) ListUserActiveOnDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id FROM bookings
		WHERE user_id = $1 AND booking_date = $2 AND status IN ('pending', 'approved')`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("database error listing user bookings: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan booking id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasActiveOnDate reports whether the user already holds an active booking
// on the date.
func (s *Store) HasActiveOnDate(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_id = $1 AND booking_date = $2 AND status IN ('pending', 'approved')
		)`, userID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("database error checking user bookings: %w", err)
	}
	return exists, nil
}

const userViewColumns = `
	b.id, b.room_id, b.slot_id, b.status, b.booking_date, b.reject_reason,
	r.room_name, r.image, r.capacity,
	t.slot_name, t.start_time, t.end_time,
	a.username`

func (s *Store) scanUserViews(ctx context.Context, query string, args ...any) ([]UserBookingView, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("database error listing bookings: %w", err)
	}
	defer rows.Close()

	views := []UserBookingView{}
	for rows.Next() {
		var v UserBookingView
		var rawStatus string
		var start, end pgtype.Time
		if err := rows.Scan(
			&v.BookingID, &v.RoomID, &v.SlotID, &rawStatus, &v.BookingDate, &v.RejectReason,
			&v.RoomName, &v.RoomImage, &v.Capacity,
			&v.SlotName, &start, &end,
			&v.ApprovedByName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking view: %w", err)
		}
		if v.Status, err = shared_models.ParseBookingStatus(rawStatus); err != nil {
			return nil, err
		}
		v.StartTime = formatTime(start)
		v.EndTime = formatTime(end)
		views = append(views, v)
	}
	return views, rows.Err()
}

// ListUserPending returns the user's pending bookings, newest date first.
func (s *Store) ListUserPending(ctx context.Context, userID uuid.UUID) ([]UserBookingView, error) {
	return s.scanUserViews(ctx, `
		SELECT `+userViewColumns+`
		FROM bookings b
		JOIN rooms r ON b.room_id = r.room_id
		JOIN time_slots t ON b.slot_id = t.slot_id
		LEFT JOIN users a ON b.approved_by = a.id
		WHERE b.user_id = $1 AND b.status = 'pending'
		ORDER BY b.booking_date DESC, t.start_time ASC`, userID)
}

// ListUserHistory returns the user's bookings in a terminal status.
func (s *Store) ListUserHistory(ctx context.Context, userID uuid.UUID) ([]UserBookingView, error) {
	return s.scanUserViews(ctx, `
		SELECT `+userViewColumns+`
		FROM bookings b
		JOIN rooms r ON b.room_id = r.room_id
		JOIN time_slots t ON b.slot_id = t.slot_id
		LEFT JOIN users a ON b.approved_by = a.id
		WHERE b.user_id = $1 AND b.status IN ('approved', 'rejected', 'cancelled')
		ORDER BY b.booking_date DESC, t.start_time DESC`, userID)
}

// ListPendingRequests returns every pending booking for the approver queue,
// newest first.
func (s *Store) ListPendingRequests(ctx context.Context) ([]PendingRequestView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT b.id, b.status, b.booking_date,
		       r.room_name, r.image,
		       u.username,
		       t.slot_name, t.start_time, t.end_time
		FROM bookings b
		JOIN rooms r ON b.room_id = r.room_id
		JOIN users u ON b.user_id = u.id
		JOIN time_slots t ON b.slot_id = t.slot_id
		WHERE b.status = 'pending'
		ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("database error listing pending requests: %w", err)
	}
	defer rows.Close()

	views := []PendingRequestView{}
	for rows.Next() {
		var v PendingRequestView
		var rawStatus string
		var start, end pgtype.Time
		if err := rows.Scan(
			&v.BookingID, &rawStatus, &v.BookingDate,
			&v.RoomName, &v.RoomImage,
			&v.UserName,
			&v.SlotName, &start, &end,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		if v.Status, err = shared_models.ParseBookingStatus(rawStatus); err != nil {
			return nil, err
		}
		v.StartTime = formatTime(start)
		v.EndTime = formatTime(end)
		views = append(views, v)
	}
	return views, rows.Err()
}

// GlobalHistory returns the full audit trail of terminal transitions,
// newest first, derived from booking_events.
func (s *Store) GlobalHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT b.id, r.room_name, r.image, t.slot_name, b.booking_date,
		       e.action, e.new_status, e.created_at,
		       b.reject_reason,
		       u.username, act.username
		FROM booking_events e
		JOIN bookings b ON e.booking_id = b.id
		JOIN rooms r ON b.room_id = r.room_id
		JOIN time_slots t ON b.slot_id = t.slot_id
		JOIN users u ON b.user_id = u.id
		JOIN users act ON e.actor_id = act.id
		WHERE e.action IN ('approve', 'reject', 'cancel')
		ORDER BY e.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("database error listing history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var rawStatus string
		if err := rows.Scan(
			&e.BookingID, &e.RoomName, &e.RoomImage, &e.SlotName, &e.BookingDate,
			&e.Action, &rawStatus, &e.Timestamp,
			&e.RejectReason,
			&e.BookedBy, &e.ActorName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if e.NewStatus, err = shared_models.ParseBookingStatus(rawStatus); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListBookingEvents returns the audit records of one booking, oldest first.
func (s *Store) ListBookingEvents(ctx context.Context, bookingID uuid.UUID) ([]BookingEvent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, booking_id, actor_id, action, prior_status, new_status, created_at
		FROM booking_events
		WHERE booking_id = $1
		ORDER BY created_at ASC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("database error listing booking events: %w", err)
	}
	defer rows.Close()

	events := []BookingEvent{}
	for rows.Next() {
		var ev BookingEvent
		var prior *string
		var rawNew string
		if err := rows.Scan(&ev.ID, &ev.BookingID, &ev.ActorID, &ev.Action, &prior, &rawNew, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking event: %w", err)
		}
		if prior != nil {
			p, err := shared_models.ParseBookingStatus(*prior)
			if err != nil {
				return nil, err
			}
			ev.PriorStatus = &p
		}
		if ev.NewStatus, err = shared_models.ParseBookingStatus(rawNew); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DashboardSummary computes the aggregate dashboard counts in one query.
func (s *Store) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	sum := &DashboardSummary{}
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM rooms WHERE room_status = 'free'),
			(SELECT COUNT(*) FROM rooms WHERE room_status = 'disabled'),
			(SELECT COUNT(*) FROM bookings WHERE status = 'pending'),
			(SELECT COUNT(*) FROM bookings WHERE status = 'approved')`,
	).Scan(&sum.FreeRooms, &sum.DisabledRooms, &sum.PendingBookings, &sum.ApprovedBookings)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to compute dashboard summary: %v", err)
		return nil, fmt.Errorf("database error computing dashboard summary: %w", err)
	}
	return sum, nil
}

// formatTime renders a TIME column value as "HH:MM".
func formatTime(t pgtype.Time) string {
	if !t.Valid {
		return ""
	}
	totalMinutes := t.Microseconds / 1_000_000 / 60
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
