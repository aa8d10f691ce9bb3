package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/manishhsuthar/EduConnect/internal/database"
	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom_DuplicateNameConflict(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "prof", models.RoleFaculty, "Computer Engineering")
	h := NewConversationHandler(fx.store, fx.tracker)

	body := gin.H{"name": "Project Alpha", "description": "workspace"}

	w, c := jsonRequest(t, "POST", "/api/conversations/rooms", body)
	c.Set("userId", "prof")
	h.CreateRoom(c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, c = jsonRequest(t, "POST", "/api/conversations/rooms", body)
	c.Set("userId", "prof")
	h.CreateRoom(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateRoom_StudentForbidden(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "student", models.RoleStudent, "")
	h := NewConversationHandler(fx.store, fx.tracker)

	w, c := jsonRequest(t, "POST", "/api/conversations/rooms", gin.H{"name": "My Room"})
	c.Set("userId", "student")
	h.CreateRoom(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListRooms_FilteredByPolicy(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "civil-prof", models.RoleFaculty, "Civil Engineering")
	h := NewConversationHandler(fx.store, fx.tracker)

	for _, name := range []string{"general", "announcements", "Civil Department", "Computer Department"} {
		_, err := fx.store.CreateGroupRoom(name, "", nil)
		require.NoError(t, err)
	}

	w, c := jsonRequest(t, "GET", "/api/conversations/rooms", nil)
	c.Set("userId", "civil-prof")
	h.ListRooms(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rooms []models.Conversation `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	names := make([]string, len(resp.Rooms))
	for i, r := range resp.Rooms {
		names[i] = r.Name
	}
	assert.ElementsMatch(t, []string{"general", "announcements", "Civil Department"}, names)
}

func TestCreateDM_IdempotentAndSelfRejected(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "u1", models.RoleStudent, "")
	fx.createUser(t, "u2", models.RoleStudent, "")
	h := NewConversationHandler(fx.store, fx.tracker)

	w, c := jsonRequest(t, "POST", "/api/conversations/dms", gin.H{"userId": "u2"})
	c.Set("userId", "u1")
	h.CreateDM(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var first struct {
		Conversation models.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w, c = jsonRequest(t, "POST", "/api/conversations/dms", gin.H{"userId": "u1"})
	c.Set("userId", "u2")
	h.CreateDM(c)
	require.Equal(t, http.StatusOK, w.Code)

	var second struct {
		Conversation models.Conversation `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)

	w, c = jsonRequest(t, "POST", "/api/conversations/dms", gin.H{"userId": "u1"})
	c.Set("userId", "u1")
	h.CreateDM(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessages_DMForbiddenForOutsider(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "u1", models.RoleStudent, "")
	fx.createUser(t, "u2", models.RoleStudent, "")
	fx.createUser(t, "outsider", models.RoleStudent, "")
	h := NewConversationHandler(fx.store, fx.tracker)

	dm, err := fx.store.FindOrCreateDirectConversation("u1", "u2")
	require.NoError(t, err)

	w, c := jsonRequest(t, "GET", "/api/conversations/"+dm.ID+"/messages", nil)
	c.Set("userId", "outsider")
	c.Params = gin.Params{{Key: "id", Value: dm.ID}}
	h.Messages(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, c = jsonRequest(t, "GET", "/api/conversations/"+dm.ID+"/messages", nil)
	c.Set("userId", "u1")
	c.Params = gin.Params{{Key: "id", Value: dm.ID}}
	h.Messages(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostMessage_BroadcastsStoredCopy(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "u1", models.RoleStudent, "")
	h := NewConversationHandler(fx.store, fx.tracker)

	room, err := fx.store.CreateGroupRoom("general", "", nil)
	require.NoError(t, err)

	prev := Gateway
	Gateway = fx.gateway
	defer func() { Gateway = prev }()

	w, c := jsonRequest(t, "POST", "/api/conversations/"+room.ID+"/messages", gin.H{"text": "over http"})
	c.Set("userId", "u1")
	c.Params = gin.Params{{Key: "id", Value: room.ID}}
	h.PostMessage(c)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	stored, err := fx.store.RecentMessages(room.ID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	sent := fx.bc.toRoom(room.ID, "message")
	require.Len(t, sent, 1)
	view := sent[0].args[0].(messageView)
	assert.Equal(t, stored[0].ID, view.ID)
}

func TestPostMessage_AnnouncementsGateOverHTTP(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "student", models.RoleStudent, "")
	h := NewConversationHandler(fx.store, fx.tracker)

	room, err := fx.store.CreateGroupRoom("announcements", "", nil)
	require.NoError(t, err)

	w, c := jsonRequest(t, "POST", "/api/conversations/"+room.ID+"/messages", gin.H{"text": "spam"})
	c.Set("userId", "student")
	c.Params = gin.Params{{Key: "id", Value: room.ID}}
	h.PostMessage(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListMessagingUsers_ExcludesSelfAndPending(t *testing.T) {
	fx := setupGateway(t)
	fx.createUser(t, "u1", models.RoleStudent, "")
	fx.createUser(t, "u2", models.RoleStudent, "")
	fx.tracker.MarkConnected("u2")
	h := NewConversationHandler(fx.store, fx.tracker)

	pending := fx.createUser(t, "pending-prof", models.RoleFaculty, "")
	pending.IsApproved = false
	require.NoError(t, database.DB.Save(pending).Error)

	w, c := jsonRequest(t, "GET", "/api/conversations/users", nil)
	c.Set("userId", "u1")
	h.ListMessagingUsers(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []struct {
			ID       string `json:"id"`
			IsOnline bool   `json:"isOnline"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "u2", resp.Users[0].ID)
	assert.True(t, resp.Users[0].IsOnline)
}
