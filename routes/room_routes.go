package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/controllers/booking_controller"
	"github.com/joy095/roombooking/controllers/room_controller"
	"github.com/joy095/roombooking/controllers/slot_controller"
	"github.com/joy095/roombooking/middlewares/auth"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/room_models"
	"github.com/joy095/roombooking/models/slot_models"
)

func RegisterRoomRoutes(router *gin.Engine, pool *pgxpool.Pool) {
	rooms := room_models.NewStore(pool)
	slots := slot_models.NewStore(pool)
	ledger := booking_models.NewStore(pool)

	svc := booking_controller.NewBookingService(ledger, rooms, slots)
	roomController := room_controller.NewRoomController(rooms, svc, ledger)
	slotController := slot_controller.NewSlotController(slots)

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/rooms", roomController.GetAllRooms)
		protected.GET("/rooms/:id", roomController.GetRoom)
		protected.GET("/rooms/:id/availability", roomController.Availability)

		protected.POST("/rooms", roomController.CreateRoom)
		protected.PUT("/rooms/:id", roomController.UpdateRoom)
		protected.PATCH("/rooms/:id/status", roomController.SetRoomStatus)

		protected.GET("/time-slots", slotController.GetAllTimeSlots)
		protected.GET("/time-slots/:id", slotController.GetTimeSlot)
	}
}
