package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/handlers"
	"github.com/manishhsuthar/EduConnect/internal/middleware"
)

func RegisterNotificationRoutes(r gin.IRouter) {
	r.Use(middleware.AuthMiddleware())

	r.GET("", handlers.GetNotifications)
	r.PUT("/read-all", handlers.MarkAllNotificationsRead)
	r.PUT("/:id/read", handlers.MarkNotificationRead)
}
