package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/database"
	"github.com/manishhsuthar/EduConnect/internal/presence"
	"github.com/manishhsuthar/EduConnect/internal/store"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
)

const dashboardCacheKey = "dashboard:stats"

type dashboardStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	OnlineUsers   int   `json:"onlineUsers"`
	MessagesToday int64 `json:"messagesToday"`
	TotalRooms    int   `json:"totalRooms"`
}

// DashboardStats returns platform-wide counters. Counts that hit the
// database are cached in Redis for a few seconds; the online count is
// always read live from the presence tracker.
func DashboardStats(st *store.Store, tracker *presence.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var stats dashboardStats
		if database.Redis != nil && database.CacheGet(dashboardCacheKey, &stats) == nil {
			stats.OnlineUsers = tracker.OnlineCount()
			c.JSON(http.StatusOK, stats)
			return
		}

		totalUsers, err := st.CountUsers()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to count users")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}

		messagesToday, err := st.MessagesToday()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to count messages")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}

		rooms, err := st.ListGroupRooms()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to count rooms")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}

		stats = dashboardStats{
			TotalUsers:    totalUsers,
			MessagesToday: messagesToday,
			TotalRooms:    len(rooms),
		}
		if database.Redis != nil {
			_ = database.CacheSet(dashboardCacheKey, stats, 10*time.Second)
		}

		stats.OnlineUsers = tracker.OnlineCount()
		c.JSON(http.StatusOK, stats)
	}
}
