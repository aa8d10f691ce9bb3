package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/handlers"
	"github.com/manishhsuthar/EduConnect/internal/middleware"
)

func RegisterAuthRoutes(r gin.IRouter) {
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
	r.POST("/logout", handlers.Logout)

	r.POST("/forgot-password", handlers.ForgotPassword)
	r.POST("/reset-password/:token", handlers.ResetPassword)

	r.GET("/me", middleware.AuthMiddleware(), handlers.Me)
	r.PUT("/account", middleware.AuthMiddleware(), handlers.UpdateAccount)
	r.POST("/profile-setup", middleware.AuthMiddleware(), handlers.ProfileSetup)
}
