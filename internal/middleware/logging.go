package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
)

// LoggingMiddleware logs all incoming requests with timing.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		userID, _ := c.Get("userId")
		userIDStr := ""
		if userID != nil {
			userIDStr = userID.(string)
		}

		event := logger.Log.Info()
		if status >= 400 {
			event = logger.Log.Warn()
		}
		if status >= 500 {
			event = logger.Log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", rawQuery).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Str("user_id", userIDStr).
			Int("body_size", c.Writer.Size()).
			Msg("request")
	}
}
