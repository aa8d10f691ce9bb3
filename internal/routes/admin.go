package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/handlers"
	"github.com/manishhsuthar/EduConnect/internal/middleware"
)

func RegisterAdminRoutes(r gin.IRouter, h *handlers.AdminHandler) {
	r.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())

	r.GET("/users", h.ListUsers)
	r.DELETE("/users/:id", h.DeleteUser)

	r.GET("/faculty/pending", h.PendingFaculty)
	r.PUT("/faculty/:id/approve", h.ApproveFaculty)

	r.GET("/messages", h.RecentMessages)
}
