package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/handlers"
	"github.com/manishhsuthar/EduConnect/internal/middleware"
	"github.com/manishhsuthar/EduConnect/internal/presence"
	"github.com/manishhsuthar/EduConnect/internal/store"
)

func RegisterDashboardRoutes(r gin.IRouter, st *store.Store, tracker *presence.Tracker) {
	r.GET("/stats", middleware.AuthMiddleware(), handlers.DashboardStats(st, tracker))
}
