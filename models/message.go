package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Default role labels. The effective labels are configurable; these are the
// fallbacks used when no override is set.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged utterance within a chat. Messages are
// append-only; insertion order is recovered by sorting on CreatedAt.
// SessionID is a denormalized copy of the owning chat's session scope.
type Message struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	ChatID    string    `json:"chat_id" gorm:"type:uuid;not null;index"`
	Role      string    `json:"role" gorm:"size:20;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	SessionID string    `json:"session_id" gorm:"size:64;not null;index"`
	CreatedAt time.Time `json:"-"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
