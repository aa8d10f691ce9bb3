package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationGeneral  NotificationType = "general"
	NotificationApproval NotificationType = "approval"
	NotificationMessage  NotificationType = "message"
	NotificationSystem   NotificationType = "system"
)

type Notification struct {
	ID        string           `gorm:"primaryKey;type:text" json:"id"`
	UserID    string           `gorm:"index;type:text;not null" json:"userId"`
	Title     string           `gorm:"not null" json:"title"`
	Body      string           `json:"body"`
	Type      NotificationType `gorm:"type:text;default:'general'" json:"type"`
	IsRead    bool             `gorm:"default:false;index" json:"isRead"`
	ReadAt    *time.Time       `json:"readAt"`
	Link      string           `json:"link"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
