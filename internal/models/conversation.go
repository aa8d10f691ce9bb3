package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationType string

const (
	ConversationGroup ConversationType = "group"
	ConversationDM    ConversationType = "dm"
)

// Conversation is either a named group room or a two-participant direct
// conversation. Uniqueness invariants live in the schema: group room
// names are unique among groups, and PairKey keeps at most one DM per
// unordered participant pair even under concurrent creation.
type Conversation struct {
	ID        string           `gorm:"primaryKey;type:text" json:"id"`
	Type      ConversationType `gorm:"type:text;not null;index" json:"type"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`

	// Group room fields. Name matching is case-sensitive.
	Name        string `gorm:"index:uq_conversations_group_name,unique,where:type = 'group'" json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	// DM field: sorted "idA:idB" of the two participant ids.
	PairKey string `gorm:"index:uq_conversations_dm_pair,unique,where:type = 'dm'" json:"-"`

	Participants []User    `gorm:"many2many:conversation_participants" json:"participants,omitempty"`
	Messages     []Message `gorm:"foreignKey:ConversationID" json:"-"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

func (c *Conversation) IsGroup() bool {
	return c.Type == ConversationGroup
}

// HasParticipant reports whether the user id is part of the loaded
// participant set.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// DirectPairKey builds the order-independent key identifying a DM pair.
func DirectPairKey(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}
