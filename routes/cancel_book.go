package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/config/redis"
	"github.com/joy095/roombooking/controllers/approval_controller"
	"github.com/joy095/roombooking/controllers/cancel_book_controller"
	"github.com/joy095/roombooking/logger"
	"github.com/joy095/roombooking/middlewares/auth"
	"github.com/joy095/roombooking/models/booking_models"
	"github.com/joy095/roombooking/models/room_models"
	"github.com/joy095/roombooking/models/slot_models"
	"github.com/joy095/roombooking/models/user_models"
)

func RegisterCancelBookingRoutes(router *gin.Engine, pool *pgxpool.Pool) {
	rdb, err := redis.GetRedisClient(context.Background())
	if err != nil {
		logger.WarnLogger.Warnf("Occupancy markers disabled: %v", err)
		rdb = nil
	}

	notifier := approval_controller.NewMailNotifier(
		user_models.NewStore(pool),
		room_models.NewStore(pool),
		slot_models.NewStore(pool),
	)
	svc := approval_controller.NewLifecycleService(booking_models.NewStore(pool), rdb, notifier)
	cancelController := cancel_book_controller.NewCancelBookController(svc)

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.PATCH("/bookings/:id/cancel", cancelController.CancelBooking)
	}
}
