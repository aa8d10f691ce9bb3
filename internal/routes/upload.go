package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/handlers"
	"github.com/manishhsuthar/EduConnect/internal/middleware"
)

func RegisterUploadRoutes(r gin.IRouter) {
	r.Use(middleware.AuthMiddleware())

	r.POST("/attachment", handlers.UploadAttachment)
	r.POST("/profile-photo", handlers.UploadProfilePhoto)
}
