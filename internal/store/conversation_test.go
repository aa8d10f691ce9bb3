package store

import (
	"testing"
	"time"

	"github.com/manishhsuthar/EduConnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}))
	return New(db)
}

func createUser(t *testing.T, s *Store, id, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     models.RoleStudent,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

func TestCreateGroupRoom_DuplicateName(t *testing.T) {
	s := newTestStore(t)

	first, err := s.CreateGroupRoom("general", "open room", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = s.CreateGroupRoom("general", "again", nil)
	assert.ErrorIs(t, err, ErrDuplicateRoomName)
}

func TestCreateGroupRoom_CaseSensitiveNames(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateGroupRoom("general", "", nil)
	require.NoError(t, err)

	// "General" is a different room.
	_, err = s.CreateGroupRoom("General", "", nil)
	assert.NoError(t, err)
}

func TestCreateGroupRoom_EmptyName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateGroupRoom("   ", "", nil)
	assert.Error(t, err)
}

func TestFindOrCreateDirectConversation_Idempotent(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "u1", "alice")
	createUser(t, s, "u2", "bob")

	first, err := s.FindOrCreateDirectConversation("u1", "u2")
	require.NoError(t, err)

	// Same pair in either order resolves to the same conversation.
	second, err := s.FindOrCreateDirectConversation("u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	s.db.Model(&models.Conversation{}).Where("type = ?", models.ConversationDM).Count(&count)
	assert.EqualValues(t, 1, count)
}

// A rival writer creates the pair's conversation after this call's
// lookup misses but before its insert lands. The insert must fail on
// the pair-key unique index and the call must return the rival's row.
func TestFindOrCreateDirectConversation_CreateConflictAdoptsWinner(t *testing.T) {
	// Shared-cache DSN: the rival insert may run on a second pooled
	// connection and must see the same in-memory database.
	db, err := gorm.Open(sqlite.Open("file:dmrace?mode=memory&cache=shared"), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}))
	s := New(db)
	createUser(t, s, "u1", "alice")
	createUser(t, s, "u2", "bob")

	pairKey := models.DirectPairKey("u1", "u2")
	injected := false
	err = db.Callback().Create().Before("gorm:create").Register("rival_dm_writer", func(tx *gorm.DB) {
		conv, ok := tx.Statement.Dest.(*models.Conversation)
		if !ok || conv.Type != models.ConversationDM || injected {
			return
		}
		injected = true
		rival := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true})
		require.NoError(t, rival.Exec(
			"INSERT INTO conversations (id, type, name, description, pair_key, created_at, updated_at) VALUES (?, ?, '', '', ?, ?, ?)",
			"rival-conv", string(models.ConversationDM), pairKey, time.Now(), time.Now(),
		).Error)
	})
	require.NoError(t, err)

	conv, err := s.FindOrCreateDirectConversation("u1", "u2")
	require.NoError(t, err)
	require.True(t, injected, "the conflicting insert must have fired")
	assert.Equal(t, "rival-conv", conv.ID)

	var count int64
	db.Model(&models.Conversation{}).
		Where("type = ? AND pair_key = ?", models.ConversationDM, pairKey).
		Count(&count)
	assert.EqualValues(t, 1, count, "the pair still has exactly one conversation")
}

func TestFindOrCreateDirectConversation_SelfRejected(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "u1", "alice")

	_, err := s.FindOrCreateDirectConversation("u1", "u1")
	assert.ErrorIs(t, err, ErrSelfConversation)
}

func TestFindOrCreateDirectConversation_UnknownUser(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "u1", "alice")

	_, err := s.FindOrCreateDirectConversation("u1", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAppendMessage_Validation(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "u1", "alice")
	room, err := s.CreateGroupRoom("general", "", nil)
	require.NoError(t, err)

	image := &models.Attachment{URL: "https://cdn/x.png", Filename: "x.png", Mimetype: "image/png", Size: 1024}

	t.Run("empty message rejected", func(t *testing.T) {
		_, err := s.AppendMessage(room.ID, "u1", "   ", nil)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})

	t.Run("text and attachment together rejected", func(t *testing.T) {
		_, err := s.AppendMessage(room.ID, "u1", "hello", image)
		assert.ErrorIs(t, err, ErrTextAndAttachment)
	})

	t.Run("pdf attachment rejected", func(t *testing.T) {
		pdf := &models.Attachment{URL: "https://cdn/x.pdf", Filename: "x.pdf", Mimetype: "application/pdf", Size: 1024}
		_, err := s.AppendMessage(room.ID, "u1", "", pdf)
		assert.ErrorIs(t, err, ErrAttachmentType)
	})

	t.Run("oversized image rejected", func(t *testing.T) {
		big := &models.Attachment{URL: "https://cdn/big.png", Filename: "big.png", Mimetype: "image/png", Size: 6 * 1024 * 1024}
		_, err := s.AppendMessage(room.ID, "u1", "", big)
		assert.ErrorIs(t, err, ErrAttachmentTooLarge)
	})

	t.Run("video under the limit accepted", func(t *testing.T) {
		video := &models.Attachment{URL: "https://cdn/v.mp4", Filename: "v.mp4", Mimetype: "video/mp4", Size: 4 * 1024 * 1024}
		msg, err := s.AppendMessage(room.ID, "u1", "", video)
		require.NoError(t, err)
		assert.True(t, msg.HasAttachment())
	})

	t.Run("unknown conversation rejected", func(t *testing.T) {
		_, err := s.AppendMessage("missing", "u1", "hello", nil)
		assert.ErrorIs(t, err, ErrConversationNotFound)
	})
}

func TestAppendMessage_LoadsSender(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "u1", "alice")
	room, err := s.CreateGroupRoom("general", "", nil)
	require.NoError(t, err)

	msg, err := s.AppendMessage(room.ID, "u1", "hello", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "alice", msg.Sender.Username)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestRecentMessages_OldestFirstWindow(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "u1", "alice")
	room, err := s.CreateGroupRoom("general", "", nil)
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three", "four", "five"} {
		_, err := s.AppendMessage(room.ID, "u1", text, nil)
		require.NoError(t, err)
	}

	messages, err := s.RecentMessages(room.ID, 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Newest three, returned oldest first.
	assert.Equal(t, "three", messages[0].Text)
	assert.Equal(t, "four", messages[1].Text)
	assert.Equal(t, "five", messages[2].Text)
}

func TestListGroupRooms_SortedByName(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.CreateGroupRoom(name, "", nil)
		require.NoError(t, err)
	}

	rooms, err := s.ListGroupRooms()
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	assert.Equal(t, "alpha", rooms[0].Name)
	assert.Equal(t, "mid", rooms[1].Name)
	assert.Equal(t, "zeta", rooms[2].Name)
}

func TestListDirectConversationsFor(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "u1", "alice")
	createUser(t, s, "u2", "bob")
	createUser(t, s, "u3", "carol")

	_, err := s.FindOrCreateDirectConversation("u1", "u2")
	require.NoError(t, err)
	_, err = s.FindOrCreateDirectConversation("u2", "u3")
	require.NoError(t, err)

	convs, err := s.ListDirectConversationsFor("u1")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.True(t, convs[0].HasParticipant("u2"))

	convs, err = s.ListDirectConversationsFor("u2")
	require.NoError(t, err)
	assert.Len(t, convs, 2)
}
