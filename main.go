package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/roombooking/config"
	"github.com/joy095/roombooking/config/db"
	"github.com/joy095/roombooking/config/redis"
	"github.com/joy095/roombooking/logger"
	middleware "github.com/joy095/roombooking/middlewares"
	"github.com/joy095/roombooking/middlewares/cors"
	"github.com/joy095/roombooking/routes"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	ctx := context.Background()

	pool, err := db.Connect(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer db.Close(pool)
	defer redis.CloseRedis()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())
	r.Use(middleware.NewRateLimiter("100-15m", "global"))

	routes.RegisterUserRoutes(r, pool)
	routes.RegisterRoomRoutes(r, pool)
	routes.RegisterBookingRoutes(r, pool)
	routes.RegisterApprovalRoutes(r, pool)
	routes.RegisterCancelBookingRoutes(r, pool)
	routes.RegisterDashboardRoutes(r, pool)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from room booking service"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		fmt.Printf("Go Server listening on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server failed to listen: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down Go server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Go Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Go Server exited gracefully.")
}
