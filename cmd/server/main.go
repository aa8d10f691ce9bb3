package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/config"
	"github.com/manishhsuthar/EduConnect/internal/database"
	"github.com/manishhsuthar/EduConnect/internal/handlers"
	"github.com/manishhsuthar/EduConnect/internal/middleware"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/manishhsuthar/EduConnect/internal/presence"
	"github.com/manishhsuthar/EduConnect/internal/routes"
	"github.com/manishhsuthar/EduConnect/internal/seeds"
	"github.com/manishhsuthar/EduConnect/internal/store"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
)

func main() {
	config.LoadConfig()

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting EduConnect Backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database.Connect()
	database.InitRedis()

	logger.Info().Msg("Running database migrations...")
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.Notification{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	st := store.New(database.DB)

	if err := seeds.SeedAdmin(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed admin account")
	}
	if err := seeds.SeedRooms(st); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed default rooms")
	}

	tracker := presence.NewTracker()

	r := gin.Default()

	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	// Long-polling transports would burn through the bucket, so the
	// socket path skips the general limiter.
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/socket.io/") {
			c.Next()
			return
		}
		middleware.GeneralRateLimit()(c)
	})

	conversationHandler := handlers.NewConversationHandler(st, tracker)
	adminHandler := handlers.NewAdminHandler(st)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		routes.RegisterAuthRoutes(auth)

		routes.RegisterConversationRoutes(api.Group("/conversations"), conversationHandler)
		routes.RegisterNotificationRoutes(api.Group("/notifications"))
		routes.RegisterUploadRoutes(api.Group("/upload"))
		routes.RegisterAdminRoutes(api.Group("/admin"), adminHandler)
		routes.RegisterDashboardRoutes(api.Group("/dashboard"), st, tracker)
	}

	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" {
			status = "degraded"
		}

		c.JSON(200, gin.H{
			"status":  status,
			"message": "EduConnect Backend is running",
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	})

	gateway := handlers.NewChatGateway(st, tracker)
	socketServer := gateway.NewSocketServer()
	defer socketServer.Close()
	handlers.Gateway = gateway

	r.GET("/socket.io/*any", handlers.SocketHandler(socketServer))
	r.POST("/socket.io/*any", handlers.SocketHandler(socketServer))

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
