package slot_models

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/logger"
)

var ErrSlotNotFound = errors.New("time slot not found")

// TimeSlot is static catalog data: a named window within one civil day. The
// same slots apply to every date.
type TimeSlot struct {
	ID        int32  `json:"slot_id"`
	Name      string `json:"slot_name"`
	StartTime string `json:"start_time"` // "09:00"
	EndTime   string `json:"end_time"`
}

// Store provides read access to the time slot catalog.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetTimeSlotByID fetches a single slot.
func (s *Store) GetTimeSlotByID(ctx context.Context, id int32) (*TimeSlot, error) {
	slot := &TimeSlot{}
	var start, end pgtype.Time
	query := `SELECT slot_id, slot_name, start_time, end_time FROM time_slots WHERE slot_id = $1`

	err := s.db.QueryRow(ctx, query, id).Scan(&slot.ID, &slot.Name, &start, &end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch time slot %d: %v", id, err)
		return nil, fmt.Errorf("database error fetching time slot: %w", err)
	}

	slot.StartTime = formatTime(start)
	slot.EndTime = formatTime(end)
	return slot, nil
}

// GetAllTimeSlots lists the catalog ordered by start time.
func (s *Store) GetAllTimeSlots(ctx context.Context) ([]TimeSlot, error) {
	query := `SELECT slot_id, slot_name, start_time, end_time FROM time_slots ORDER BY start_time`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list time slots: %v", err)
		return nil, fmt.Errorf("database error listing time slots: %w", err)
	}
	defer rows.Close()

	var slots []TimeSlot
	for rows.Next() {
		var slot TimeSlot
		var start, end pgtype.Time
		if err := rows.Scan(&slot.ID, &slot.Name, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan time slot: %w", err)
		}
		slot.StartTime = formatTime(start)
		slot.EndTime = formatTime(end)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// formatTime renders a TIME column value as "HH:MM".
func formatTime(t pgtype.Time) string {
	if !t.Valid {
		return ""
	}
	totalMinutes := t.Microseconds / 1_000_000 / 60
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}
