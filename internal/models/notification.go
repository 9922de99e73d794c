package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationApplicationUpdate NotificationType = "application_update"
	NotificationInterview         NotificationType = "interview"
	NotificationOpportunity       NotificationType = "opportunity"
	NotificationSystem            NotificationType = "system"
)

// Notification is an inbox row for a single user. Rows are created by the
// fan-out consumer; only the Read flag mutates afterwards.
type Notification struct {
	ID      string           `json:"id" gorm:"primaryKey;size:36"`
	UserID  string           `json:"user_id" gorm:"not null;index;size:36"`
	Title   string           `json:"title" gorm:"not null;size:255"`
	Message string           `json:"message" gorm:"type:text;not null"`
	Type    NotificationType `json:"type" gorm:"not null;size:20" validate:"required,oneof=application_update interview opportunity system"`
	Read    bool             `json:"read" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index:,sort:desc"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
