package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/handlers"
	"github.com/manishhsuthar/EduConnect/internal/middleware"
)

func RegisterConversationRoutes(r gin.IRouter, h *handlers.ConversationHandler) {
	r.Use(middleware.AuthMiddleware())

	r.GET("/rooms", h.ListRooms)
	r.POST("/rooms", h.CreateRoom)

	r.GET("/dms", h.ListDMs)
	r.POST("/dms", h.CreateDM)

	r.GET("/users", h.ListMessagingUsers)

	r.GET("/:id/messages", h.Messages)
	r.POST("/:id/messages", middleware.ChatRateLimit(), h.PostMessage)
}
