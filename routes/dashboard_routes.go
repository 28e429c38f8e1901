package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/controllers/dashboard_controller"
	"github.com/joy095/roombooking/middlewares/auth"
	"github.com/joy095/roombooking/models/booking_models"
)

func RegisterDashboardRoutes(router *gin.Engine, pool *pgxpool.Pool) {
	dashboardController := dashboard_controller.NewDashboardController(booking_models.NewStore(pool))

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/dashboard/summary", dashboardController.Summary)
	}
}
