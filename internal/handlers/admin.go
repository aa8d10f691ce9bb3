package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/database"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/manishhsuthar/EduConnect/internal/store"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
)

// AdminHandler serves the admin console: user management, faculty
// approval and the moderation message feed.
type AdminHandler struct {
	store *store.Store
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

// ListUsers GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	query := database.DB.Order("created_at desc")

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// PendingFaculty GET /admin/faculty/pending
func (h *AdminHandler) PendingFaculty(c *gin.Context) {
	var users []models.User
	if err := database.DB.
		Where("role = ? AND is_approved = ?", models.RoleFaculty, false).
		Order("created_at asc").
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending faculty"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ApproveFaculty PUT /admin/faculty/:id/approve
func (h *AdminHandler) ApproveFaculty(c *gin.Context) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Role != models.RoleFaculty {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a faculty member"})
		return
	}
	if user.IsApproved {
		c.JSON(http.StatusOK, gin.H{"message": "Faculty already approved"})
		return
	}

	user.IsApproved = true
	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve faculty"})
		return
	}

	createNotification(user.ID, "Account approved",
		"Your faculty account has been approved. You can now sign in.",
		models.NotificationApproval, "/login")

	logger.Info().Str("user_id", user.ID).Msg("Faculty account approved")
	c.JSON(http.StatusOK, gin.H{"message": "Faculty approved", "user": user})
}

// DeleteUser DELETE /admin/users/:id
//
// Conversations and messages the user took part in are kept; history
// stays readable after the account is gone.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, _ := c.Get("userId")
	targetID := c.Param("id")
	if adminID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := database.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	logger.Info().Str("user_id", targetID).Msg("User deleted by admin")
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// RecentMessages GET /admin/messages serves the moderation feed: the
// newest messages platform-wide regardless of room policy.
func (h *AdminHandler) RecentMessages(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	messages, err := h.store.RecentAcrossConversations(limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load moderation feed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	type feedEntry struct {
		messageView
		ConversationName string                  `json:"conversationName,omitempty"`
		ConversationType models.ConversationType `json:"conversationType"`
	}
	entries := make([]feedEntry, len(messages))
	for i, m := range messages {
		entries[i] = feedEntry{
			messageView:      newMessageView(m),
			ConversationName: m.Conversation.Name,
			ConversationType: m.Conversation.Type,
		}
	}
	c.JSON(http.StatusOK, gin.H{"messages": entries})
}
