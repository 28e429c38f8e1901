package slot_controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/models/slot_models"
)

// SlotController serves the static time slot catalog.
type SlotController struct {
	slots *slot_models.Store
}

func NewSlotController(slots *slot_models.Store) *SlotController {
	return &SlotController{slots: slots}
}

// GetAllTimeSlots handles GET /time-slots.
func (sc *SlotController) GetAllTimeSlots(c *gin.Context) {
	slots, err := sc.slots.GetAllTimeSlots(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list time slots: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, slots)
}

// GetTimeSlot handles GET /time-slots/:id.
func (sc *SlotController) GetTimeSlot(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_REQUEST", "error": "Invalid slot id"})
		return
	}

	slot, err := sc.slots.GetTimeSlotByID(c.Request.Context(), int32(id))
	if err != nil {
		if errors.Is(err, slot_models.ErrSlotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "Time slot not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch time slot %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "STORAGE_FAILURE", "error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, slot)
}
