package room_models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/logger"
)

var ErrRoomNotFound = errors.New("room not found")

// RoomStatus is catalog-level state, independent of any date or slot. A
// disabled room accepts no new bookings but keeps its history.
type RoomStatus string

const (
	RoomStatusFree     RoomStatus = "free"
	RoomStatusDisabled RoomStatus = "disabled"
)

func ParseRoomStatus(raw string) (RoomStatus, error) {
	switch RoomStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case RoomStatusFree:
		return RoomStatusFree, nil
	case RoomStatusDisabled:
		return RoomStatusDisabled, nil
	}
	return "", fmt.Errorf("unknown room status %q", raw)
}

// Room is a bookable resource. Rooms are never deleted, only disabled.
type Room struct {
	ID          int32      `json:"room_id"`
	Name        string     `json:"room_name"`
	Description string     `json:"room_description"`
	Capacity    int        `json:"capacity"`
	Status      RoomStatus `json:"room_status"`
	Image       string     `json:"image"`
}

// Store provides read/write access to the room catalog.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const roomColumns = `room_id, room_name, room_description, capacity, room_status, image`

// GetRoomByID fetches a single room.
func (s *Store) GetRoomByID(ctx context.Context, id int32) (*Room, error) {
	r := &Room{}
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE room_id = $1`

	var rawStatus string
	err := s.db.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.Name, &r.Description, &r.Capacity, &rawStatus, &r.Image,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		logger.ErrorLogger.Errorf("Failed to fetch room %d: %v", id, err)
		return nil, fmt.Errorf("database error fetching room: %w", err)
	}

	r.Status, err = ParseRoomStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("room %d: %w", id, err)
	}
	return r, nil
}

// GetAllRooms lists the catalog.
func (s *Store) GetAllRooms(ctx context.Context) ([]Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY room_id`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list rooms: %v", err)
		return nil, fmt.Errorf("database error listing rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var r Room
		var rawStatus string
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Capacity, &rawStatus, &r.Image); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		if r.Status, err = ParseRoomStatus(rawStatus); err != nil {
			return nil, fmt.Errorf("room %d: %w", r.ID, err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// CreateRoom inserts a new room and returns it with its assigned ID.
func (s *Store) CreateRoom(ctx context.Context, r *Room) (*Room, error) {
	if r.Status == "" {
		r.Status = RoomStatusFree
	}
	query := `
		INSERT INTO rooms (room_name, room_description, capacity, room_status, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING room_id`

	err := s.db.QueryRow(ctx, query, r.Name, r.Description, r.Capacity, string(r.Status), r.Image).Scan(&r.ID)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to create room %q: %v", r.Name, err)
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	logger.InfoLogger.Infof("Room %q created with ID %d", r.Name, r.ID)
	return r, nil
}

// UpdateRoom edits the display fields of an existing room.
func (s *Store) UpdateRoom(ctx context.Context, r *Room) error {
	query := `
		UPDATE rooms
		SET room_name = $2, room_description = $3, capacity = $4, image = $5
		WHERE room_id = $1`

	cmdTag, err := s.db.Exec(ctx, query, r.ID, r.Name, r.Description, r.Capacity, r.Image)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to update room %d: %v", r.ID, err)
		return fmt.Errorf("failed to update room: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SetRoomStatus enables or disables a room at the catalog level.
func (s *Store) SetRoomStatus(ctx context.Context, id int32, status RoomStatus) error {
	query := `UPDATE rooms SET room_status = $2 WHERE room_id = $1`

	cmdTag, err := s.db.Exec(ctx, query, id, string(status))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to set room %d status to %s: %v", id, status, err)
		return fmt.Errorf("failed to set room status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrRoomNotFound
	}

	logger.InfoLogger.Infof("Room %d status set to %s", id, status)
	return nil
}
