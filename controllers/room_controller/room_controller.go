package room_controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/roombooking/controllers/booking_controller"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/room_models"
	"github.com/joy095/roombooking/models/shared_models"
	"github.com/joy095/roombooking/utils"
)

// RoomStore is the slice of the room catalog this controller needs,
// satisfied by *room_models.Store.
type RoomStore interface {
	GetRoomByID(ctx context.Context, id int32) (*room_models.Room, error)
	GetAllRooms(ctx context.Context) ([]room_models.Room, error)
	CreateRoom(ctx context.Context, r *room_models.Room) (*room_models.Room, error)
	UpdateRoom(ctx context.Context, r *room_models.Room) error
	SetRoomStatus(ctx context.Context, id int32, status room_models.RoomStatus) error
}

// Occupancy reports which slots are taken for a room on a date.
type Occupancy interface {
	BookedSlotIDs(ctx context.Context, roomID int32, date time.Time) ([]int32, error)
}

// RoomController exposes the room catalog. Reads are open to any
// authenticated user; writes are Staff only.
type RoomController struct {
	rooms     RoomStore
	svc       *booking_controller.BookingService
	occupancy Occupancy
	now       func() time.Time
}

func NewRoomController(rooms RoomStore, svc *booking_controller.BookingService, occupancy Occupancy) *RoomController {
	return &RoomController{rooms: rooms, svc: svc, occupancy: occupancy, now: time.Now}
}

type roomWithBookedSlots struct {
	room_models.Room
	BookedSlots []int32 `json:"booked_slots"`
}

// GetAllRooms handles GET /rooms. Each room carries the slot ids already
// booked for today so clients can grey them out without a second call.
func (rc *RoomController) GetAllRooms(c *gin.Context) {
	rooms, err := rc.rooms.GetAllRooms(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list rooms: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}

	today := utils.CivilDate(rc.now())
	out := make([]roomWithBookedSlots, 0, len(rooms))
	for _, r := range rooms {
		booked, err := rc.occupancy.BookedSlotIDs(c.Request.Context(), r.ID, today)
		if err != nil {
			logger.ErrorLogger.Errorf("Failed to load booked slots for room %d: %v", r.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
			return
		}
		if booked == nil {
			booked = []int32{}
		}
		out = append(out, roomWithBookedSlots{Room: r, BookedSlots: booked})
	}
	c.JSON(http.StatusOK, out)
}

// GetRoom handles GET /rooms/:id. Like the list view, the detail carries
// the slot ids already booked for today.
func (rc *RoomController) GetRoom(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}

	room, err := rc.rooms.GetRoomByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, room_models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Room not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch room %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}

	booked, err := rc.occupancy.BookedSlotIDs(c.Request.Context(), id, utils.CivilDate(rc.now()))
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to load booked slots for room %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	if booked == nil {
		booked = []int32{}
	}
	c.JSON(http.StatusOK, roomWithBookedSlots{Room: *room, BookedSlots: booked})
}

// Availability handles GET /rooms/:id/availability?date=YYYY-MM-DD. Without
// a date it reports today.
func (rc *RoomController) Availability(c *gin.Context) {
	id, ok := roomIDParam(c)
	if !ok {
		return
	}

	var date time.Time
	if raw := c.Query("date"); raw != "" {
		var err error
		if date, err = time.Parse("2006-01-02", raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "date must be YYYY-MM-DD"})
			return
		}
	}

	booked, err := rc.svc.Availability(c.Request.Context(), id, date)
	if err != nil {
		if errors.Is(err, booking_models.ErrInvalidRequest) {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Room not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to load availability for room %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	if booked == nil {
		booked = []int32{}
	}
	c.JSON(http.StatusOK, gin.H{"room_id": id, "booked_slots": booked})
}

type upsertRoomRequest struct {
	Name        string `json:"room_name" binding:"required"`
	Description string `json:"room_description"`
	Capacity    int    `json:"capacity" binding:"required"`
	Image       string `json:"image"`
}

// CreateRoom handles POST /rooms (Staff only).
func (rc *RoomController) CreateRoom(c *gin.Context) {
	if !requireStaff(c) {
		return
	}

	var req upsertRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid request body: " + err.Error()})
		return
	}

	room, err := rc.rooms.CreateRoom(c.Request.Context(), &room_models.Room{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Image:       req.Image,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /rooms/:id (Staff only).
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	id, ok := roomIDParam(c)
	if !ok {
		return
	}

	var req upsertRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid request body: " + err.Error()})
		return
	}

	err := rc.rooms.UpdateRoom(c.Request.Context(), &room_models.Room{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Image:       req.Image,
	})
	if err != nil {
		if errors.Is(err, room_models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": id, "message": "Room updated"})
}

type setRoomStatusRequest struct {
	Status string `json:"room_status" binding:"required"`
}

// SetRoomStatus handles PATCH /rooms/:id/status (Staff only). Disabling a
// room does not touch its existing bookings.
func (rc *RoomController) SetRoomStatus(c *gin.Context) {
	if !requireStaff(c) {
		return
	}
	id, ok := roomIDParam(c)
	if !ok {
		return
	}

	var req setRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid request body: " + err.Error()})
		return
	}
	status, err := room_models.ParseRoomStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": err.Error()})
		return
	}

	if err := rc.rooms.SetRoomStatus(c.Request.Context(), id, status); err != nil {
		if errors.Is(err, room_models.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": id, "room_status": status, "message": "Room status updated"})
}

func roomIDParam(c *gin.Context) (int32, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid room id"})
		return 0, false
	}
	return int32(id), true
}

func requireStaff(c *gin.Context) bool {
	role, err := utils.GetUserRoleFromContext(c)
	if err != nil || role != shared_models.RoleStaff {
		c.JSON(http.StatusForbidden, gin.H{"code": "ACCESS_DENIED", "error": "Staff role required"})
		return false
	}
	return true
}
