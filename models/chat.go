package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is a conversation thread owned by a username within a browser session.
// The composite unique index guarantees at most one chat per
// (username, session_id) pair at the storage layer, so a create/create race
// resolves to a single row and a duplicate-key error for the loser.
type Chat struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username" gorm:"size:120;not null;uniqueIndex:idx_chats_username_session"`
	SessionID string    `json:"session_id" gorm:"size:64;not null;uniqueIndex:idx_chats_username_session"`
	CreatedAt time.Time `json:"-"`
	Messages  []Message `json:"messages" gorm:"foreignKey:ChatID"`
}

func (Chat) TableName() string { return "chats" }

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
