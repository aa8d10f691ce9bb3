package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/manishhsuthar/EduConnect/internal/policy"
	"github.com/manishhsuthar/EduConnect/internal/presence"
	"github.com/manishhsuthar/EduConnect/internal/store"
	"github.com/manishhsuthar/EduConnect/pkg/logger"
)

// ConversationHandler serves the REST surface over the messaging core.
// Authorization mirrors the socket gateway so both entry points enforce
// the same room policy.
type ConversationHandler struct {
	store    *store.Store
	presence *presence.Tracker
}

func NewConversationHandler(st *store.Store, tracker *presence.Tracker) *ConversationHandler {
	return &ConversationHandler{store: st, presence: tracker}
}

// ListRooms returns the group rooms the caller is allowed to see.
func (h *ConversationHandler) ListRooms(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rooms, err := h.store.ListGroupRooms()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}

	visible := make([]models.Conversation, 0, len(rooms))
	for i := range rooms {
		if policy.CanAccessRoom(user, &rooms[i]) {
			visible = append(visible, rooms[i])
		}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": visible})
}

type CreateRoomInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateRoom creates a group room. Students cannot create rooms.
func (h *ConversationHandler) CreateRoom(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleFaculty {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only faculty and admins can create rooms"})
		return
	}

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.store.CreateGroupRoom(input.Name, input.Description, nil)
	if err == store.ErrDuplicateRoomName {
		c.JSON(http.StatusConflict, gin.H{"error": "A room with this name already exists"})
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("name", input.Name).Msg("Failed to create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// ListDMs returns the caller's direct conversations.
func (h *ConversationHandler) ListDMs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	convs, err := h.store.ListDirectConversationsFor(user.ID)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list conversations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	type dmView struct {
		ID        string               `json:"id"`
		OtherUser models.PublicProfile `json:"otherUser"`
		IsOnline  bool                 `json:"isOnline"`
	}
	views := make([]dmView, 0, len(convs))
	for i := range convs {
		view := dmView{ID: convs[i].ID}
		for _, p := range convs[i].Participants {
			if p.ID != user.ID {
				view.OtherUser = p.Public()
				view.IsOnline = h.presence.IsOnline(p.ID)
			}
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"conversations": views})
}

type CreateDMInput struct {
	UserID string `json:"userId" binding:"required"`
}

// CreateDM finds or creates the direct conversation with another user.
// Calling it twice for the same pair returns the same conversation.
func (h *ConversationHandler) CreateDM(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateDMInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := h.store.FindOrCreateDirectConversation(user.ID, input.UserID)
	switch err {
	case nil:
	case store.ErrSelfConversation:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot start a conversation with yourself"})
		return
	case store.ErrUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	default:
		logger.Error().Err(err).Msg("Failed to create conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// Messages returns a conversation's recent history, oldest first. Group
// rooms are gated by the room policy, DMs by participation.
func (h *ConversationHandler) Messages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conv, ok := h.loadAuthorized(c, user)
	if !ok {
		return
	}

	limit := historyLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	messages, err := h.store.RecentMessages(conv.ID, limit)
	if err != nil {
		logger.Error().Err(err).Str("conversation_id", conv.ID).Msg("Failed to load messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	views := make([]messageView, len(messages))
	for i, m := range messages {
		views[i] = newMessageView(m)
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

type PostMessageInput struct {
	Text       string             `json:"text"`
	Attachment *models.Attachment `json:"attachment"`
}

// PostMessage accepts a message over HTTP, applying the same
// sanitization and authorization as the socket path, then broadcasts
// the stored copy to live subscribers.
func (h *ConversationHandler) PostMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input PostMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, ok := h.loadAuthorized(c, user)
	if !ok {
		return
	}

	text := input.Text
	if text != "" {
		sanitized, err := SanitizeMessageContent(text)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		text = sanitized
	}

	if conv.IsGroup() && !policy.CanPostInRoom(user, conv, text != "") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only faculty can post in Announcements"})
		return
	}

	msg, err := h.store.AppendMessage(conv.ID, user.ID, text, input.Attachment)
	switch err {
	case nil:
	case store.ErrEmptyMessage, store.ErrTextAndAttachment, store.ErrAttachmentType, store.ErrAttachmentTooLarge:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	default:
		logger.Error().Err(err).Str("conversation_id", conv.ID).Msg("Failed to save message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	Gateway.BroadcastMessage(msg)

	c.JSON(http.StatusCreated, gin.H{"message": newMessageView(*msg)})
}

// ListMessagingUsers returns everyone the caller can start a DM with,
// annotated with live presence.
func (h *ConversationHandler) ListMessagingUsers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	users, err := h.store.ListMessagingUsers(user.ID, c.Query("search"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	type userView struct {
		models.PublicProfile
		IsOnline bool `json:"isOnline"`
	}
	views := make([]userView, len(users))
	for i := range users {
		views[i] = userView{
			PublicProfile: users[i].Public(),
			IsOnline:      h.presence.IsOnline(users[i].ID),
		}
	}
	c.JSON(http.StatusOK, gin.H{"users": views})
}

// loadAuthorized loads the conversation in the :id param and enforces
// read access for the user, writing the error response itself on
// failure.
func (h *ConversationHandler) loadAuthorized(c *gin.Context, user *models.User) (*models.Conversation, bool) {
	conv, err := h.store.GetConversation(c.Param("id"))
	if err == store.ErrConversationNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return nil, false
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load conversation"})
		return nil, false
	}

	if conv.IsGroup() {
		if !policy.CanAccessRoom(user, conv) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this room"})
			return nil, false
		}
	} else if !conv.HasParticipant(user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to view this conversation"})
		return nil, false
	}
	return conv, true
}
