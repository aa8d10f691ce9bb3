package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment references a pre-uploaded file. Only image/* and video/*
// types up to 5 MiB ever make it into a message.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Mimetype string `json:"mimetype"`
	Size     int64  `json:"size"`
}

func (a *Attachment) IsZero() bool {
	return a == nil || (a.URL == "" && a.Filename == "" && a.Mimetype == "" && a.Size == 0)
}

type Message struct {
	ID             string    `gorm:"primaryKey;type:text" json:"id"`
	ConversationID string    `gorm:"index;type:text;not null" json:"conversationId"`
	SenderID       string    `gorm:"index;type:text;not null" json:"senderId"`
	Text           string    `json:"text,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`

	// Attachment columns are flattened into the messages table; a row
	// with an empty attachment_url has no attachment.
	Attachment Attachment `gorm:"embedded;embeddedPrefix:attachment_" json:"attachment,omitempty"`

	Sender       User         `gorm:"foreignKey:SenderID" json:"-"`
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

func (m *Message) HasAttachment() bool {
	return m.Attachment.URL != ""
}
