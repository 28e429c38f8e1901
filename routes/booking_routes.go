package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/controllers/booking_controller"
	middleware "github.com/joy095/roombooking/middlewares"
	"github.com/joy095/roombooking/middlewares/auth"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/room_models"
	"github.com/joy095/roombooking/models/slot_models"
)

func RegisterBookingRoutes(router *gin.Engine, pool *pgxpool.Pool) {
	ledger := booking_models.NewStore(pool)
	svc := booking_controller.NewBookingService(ledger, room_models.NewStore(pool), slot_models.NewStore(pool))
	bookingController := booking_controller.NewBookingController(svc, ledger, ledger)

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/bookings", middleware.NewRateLimiter("100-15m", "create-booking"), bookingController.CreateBooking)

		protected.GET("/bookings/:id", bookingController.GetBooking)
		protected.GET("/my-bookings-today/:userId", bookingController.MyBookingsToday)
		protected.GET("/bookings/user/:userId/today", bookingController.HasBookingToday)
		protected.GET("/bookings/user/:userId/pending", bookingController.UserPending)
		protected.GET("/bookings/user/:userId/history", bookingController.UserHistory)

		// Approver views.
		protected.GET("/bookings/requests", bookingController.PendingRequests)
		protected.GET("/bookings/history", bookingController.GlobalHistory)
	}
}
