// Package store is the durable side of the messaging core: conversations
// and messages, with the uniqueness invariants (one DM per pair, unique
// group room names) enforced by the schema rather than application
// checks, so they hold under concurrent writers.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/manishhsuthar/EduConnect/internal/models"
	"gorm.io/gorm"
)

// MaxAttachmentSize caps attachment references at 5 MiB.
const MaxAttachmentSize = 5 * 1024 * 1024

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ValidateAttachment enforces the type and size invariants shared by the
// upload endpoint and message persistence.
func ValidateAttachment(att *models.Attachment) error {
	if att.IsZero() {
		return nil
	}
	if !strings.HasPrefix(att.Mimetype, "image/") && !strings.HasPrefix(att.Mimetype, "video/") {
		return ErrAttachmentType
	}
	if att.Size > MaxAttachmentSize {
		return ErrAttachmentTooLarge
	}
	return nil
}

// CreateGroupRoom creates a named group room. The participant list is
// informational; posting access is decided by the authorization policy,
// not membership. Name collisions (case-sensitive) fail with
// ErrDuplicateRoomName.
func (s *Store) CreateGroupRoom(name, description string, participantIDs []string) (*models.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("room name is required")
	}

	var participants []models.User
	if len(participantIDs) > 0 {
		if err := s.db.Where("id IN ?", participantIDs).Find(&participants).Error; err != nil {
			return nil, err
		}
	}

	room := models.Conversation{
		Type:         models.ConversationGroup,
		Name:         name,
		Description:  description,
		Participants: participants,
	}
	if err := s.db.Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRoomName
		}
		return nil, err
	}
	return &room, nil
}

// FindOrCreateDirectConversation returns the DM for the unordered pair,
// creating it on first contact. Concurrent calls for the same pair race
// on the pair-key unique index; the loser re-reads the winner's row, so
// the call is idempotent.
func (s *Store) FindOrCreateDirectConversation(userA, userB string) (*models.Conversation, error) {
	if userA == userB {
		return nil, ErrSelfConversation
	}
	key := models.DirectPairKey(userA, userB)

	if conv, err := s.directByPairKey(key); err == nil {
		return conv, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var participants []models.User
	if err := s.db.Where("id IN ?", []string{userA, userB}).Find(&participants).Error; err != nil {
		return nil, err
	}
	if len(participants) != 2 {
		return nil, ErrUserNotFound
	}

	conv := models.Conversation{
		Type:         models.ConversationDM,
		PairKey:      key,
		Participants: participants,
	}
	if err := s.db.Create(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; the other caller's conversation wins.
			return s.directByPairKey(key)
		}
		return nil, err
	}
	return &conv, nil
}

func (s *Store) directByPairKey(key string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Preload("Participants").
		Where("type = ? AND pair_key = ?", models.ConversationDM, key).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversation loads a conversation with its participants.
func (s *Store) GetConversation(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Preload("Participants").First(&conv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetGroupRoomByName looks a group room up by its exact name.
func (s *Store) GetGroupRoomByName(name string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.Preload("Participants").
		Where("type = ? AND name = ?", models.ConversationGroup, name).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *Store) ListGroupRooms() ([]models.Conversation, error) {
	var rooms []models.Conversation
	err := s.db.Where("type = ?", models.ConversationGroup).
		Order("name ASC").
		Find(&rooms).Error
	return rooms, err
}

func (s *Store) ListDirectConversationsFor(userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.Preload("Participants").
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("conversations.type = ? AND cp.user_id = ?", models.ConversationDM, userID).
		Find(&convs).Error
	return convs, err
}

// AppendMessage validates and persists a message, returning it with the
// server-assigned id, timestamp and sender loaded. Broadcasting is the
// caller's job and must only happen after this returns successfully.
func (s *Store) AppendMessage(conversationID, senderID, text string, att *models.Attachment) (*models.Message, error) {
	hasText := strings.TrimSpace(text) != ""
	hasAttachment := !att.IsZero()

	if !hasText && !hasAttachment {
		return nil, ErrEmptyMessage
	}
	if hasText && hasAttachment {
		return nil, ErrTextAndAttachment
	}
	if err := ValidateAttachment(att); err != nil {
		return nil, err
	}

	if _, err := s.GetConversation(conversationID); err != nil {
		return nil, err
	}

	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now(),
	}
	if hasAttachment {
		msg.Attachment = *att
	}

	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Sender").First(&msg, "id = ?", msg.ID).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// RecentMessages returns the newest `limit` messages of a conversation,
// oldest first, with sender identity loaded at read time so renames show
// up in old history.
func (s *Store) RecentMessages(conversationID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MessagesFor returns a conversation's full history, oldest first.
func (s *Store) MessagesFor(conversationID string) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Preload("Sender").
		Find(&messages).Error
	return messages, err
}

// MessagesToday counts messages persisted since local midnight.
func (s *Store) MessagesToday() (int64, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := s.db.Model(&models.Message{}).
		Where("created_at >= ?", startOfDay).
		Count(&count).Error
	return count, err
}

// RecentAcrossConversations feeds the admin moderation view: the newest
// messages platform-wide with sender and conversation loaded.
func (s *Store) RecentAcrossConversations(limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Order("created_at DESC").
		Limit(limit).
		Preload("Sender").
		Preload("Conversation").
		Find(&messages).Error
	return messages, err
}
