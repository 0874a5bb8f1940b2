package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lmchat/middleware"
	"lmchat/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MessageCreate is the request body for a new message.
type MessageCreate struct {
	Role      string `json:"role" binding:"required"`
	Content   string `json:"content"`
	SessionID string `json:"session_id" binding:"required"`
}

// ChatCreate is the request body for a new chat with its seed messages.
type ChatCreate struct {
	Username  string          `json:"username" binding:"required"`
	SessionID string          `json:"session_id" binding:"required"`
	Messages  []MessageCreate `json:"messages"`
}

// withMessages preloads a chat's messages in insertion order.
func withMessages(db *gorm.DB) *gorm.DB {
	return db.Preload("Messages", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("messages.created_at ASC")
	})
}

// CreateChat creates a chat for a username+session pair and stores its seed
// messages in the order given. A pair that already has a chat gets a 400 so
// the caller can fall back to a read; the unique index catches the
// create/create race the pre-check cannot.
func CreateChat(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body ChatCreate
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "username and session_id are required"})
			return
		}
		username := strings.TrimSpace(body.Username)

		var existing models.Chat
		err := db.Where("username = ? AND session_id = ?", username, body.SessionID).
			First(&existing).Error
		if err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": fmt.Sprintf("chat with username %s already exists", username)})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("chat lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		chat := models.Chat{Username: username, SessionID: body.SessionID}
		if err := db.Create(&chat).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"msg": fmt.Sprintf("chat with username %s already exists", username)})
				return
			}
			logger.Error("failed to create chat", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create chat"})
			return
		}

		for _, m := range body.Messages {
			msg := models.Message{
				ChatID:    chat.ID,
				Role:      m.Role,
				Content:   m.Content,
				SessionID: m.SessionID,
			}
			if err := db.Create(&msg).Error; err != nil {
				logger.Error("failed to create seed message", zap.Error(err), zap.String("chat_id", chat.ID))
				c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create message"})
				return
			}
		}

		if err := withMessages(db).First(&chat, "id = ?", chat.ID).Error; err != nil {
			logger.Error("failed to reload chat", zap.Error(err), zap.String("chat_id", chat.ID))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to load chat"})
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// GetChatByID returns the chat with its messages when both the id and the
// session scope match. A mismatch is an empty result, not an error.
func GetChatByID(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chat_id")
		sid := middleware.SessionID(c)

		var chat models.Chat
		err := withMessages(db).
			Where("id = ? AND session_id = ?", chatID, sid).
			First(&chat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		if err != nil {
			logger.Error("chat lookup failed", zap.Error(err), zap.String("chat_id", chatID))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// GetChatByUsername is GetChatByID keyed by username instead of id.
func GetChatByUsername(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		sid := middleware.SessionID(c)

		var chat models.Chat
		err := withMessages(db).
			Where("username = ? AND session_id = ?", username, sid).
			First(&chat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		if err != nil {
			logger.Error("chat lookup failed", zap.Error(err), zap.String("username", username))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// CreateChatMessage appends a message to an existing chat. The target chat
// must exist and its session scope must match the message's session_id.
func CreateChatMessage(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chat_id")

		var body MessageCreate
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "role and session_id are required"})
			return
		}

		var chat models.Chat
		err := db.Where("id = ? AND session_id = ?", chatID, body.SessionID).First(&chat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "chat not found"})
			return
		}
		if err != nil {
			logger.Error("chat lookup failed", zap.Error(err), zap.String("chat_id", chatID))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}

		msg := models.Message{
			ChatID:    chat.ID,
			Role:      body.Role,
			Content:   body.Content,
			SessionID: body.SessionID,
		}
		if err := db.Create(&msg).Error; err != nil {
			logger.Error("failed to create message", zap.Error(err), zap.String("chat_id", chatID))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create message"})
			return
		}
		c.JSON(http.StatusOK, msg)
	}
}
