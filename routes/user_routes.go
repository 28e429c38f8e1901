package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joy095/roombooking/controllers/user_controllers"
	middleware "github.com/joy095/roombooking/middlewares"
	"github.com/joy095/roombooking/models/user_models"
)

func RegisterUserRoutes(router *gin.Engine, pool *pgxpool.Pool) {
	userController := user_controllers.NewUserController(user_models.NewStore(pool))

	// Public routes. Login gets the tight limit; registration a looser one.
	router.POST("/auth/register", middleware.NewRateLimiter("10-15m", "register"), userController.Register)
	router.POST("/auth/login", middleware.NewRateLimiter("5-15m", "login"), userController.Login)
}
