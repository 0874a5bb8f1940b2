package ui

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lmchat/middleware"
	"lmchat/pkg/config"
	"lmchat/pkg/services"
)

const timeoutAdvice = "Request to the LM API timed out. It may be busy; please wait a moment and retry."

// Handler renders the chat pages and orchestrates the persistence API and the
// completion endpoint. It keeps no state between requests beyond its clients.
type Handler struct {
	cfg    config.Config
	store  *services.ChatStore
	lm     *services.CompletionClient
	logger *zap.Logger
}

func NewHandler(cfg config.Config, store *services.ChatStore, lm *services.CompletionClient, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, store: store, lm: lm, logger: logger}
}

// Home serves the username form.
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", nil)
}

// CreateChat creates a chat for the submitted username, seeded with the system
// instruction and the opening greeting. When the username already has a chat
// under this session the existing one is fetched instead. Either way the
// browser ends up on the chat page, and exactly one chat row exists for the
// username+session pair.
func (h *Handler) CreateChat(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	if username == "" {
		c.String(http.StatusBadRequest, "username is required")
		return
	}
	sid := middleware.SessionID(c)
	ctx := c.Request.Context()

	seed := []services.NewMessage{
		{Role: h.cfg.SystemRole, Content: h.cfg.SystemMessage, SessionID: sid},
		{Role: h.cfg.AssistantRole, Content: h.cfg.OpeningMessage, SessionID: sid},
	}

	chat, err := h.store.CreateChat(ctx, username, sid, seed)
	if errors.Is(err, services.ErrChatExists) {
		chat, err = h.store.ChatByUsername(ctx, username, sid)
	}
	if err != nil || chat == nil {
		h.logger.Error("failed to create or resume chat", zap.Error(err), zap.String("username", username))
		c.String(http.StatusBadGateway, "chat storage is unavailable, please retry")
		return
	}

	c.Redirect(http.StatusFound, "/chats/"+chat.ID)
}

type displayMessage struct {
	Name    string
	Content string
}

// ChatPage renders the session-scoped history in insertion order. System
// messages are persisted but never shown; role labels are mapped to display
// names.
func (h *Handler) ChatPage(c *gin.Context) {
	chatID := c.Param("chat_id")
	sid := middleware.SessionID(c)

	chat, err := h.store.ChatByID(c.Request.Context(), chatID, sid)
	if err != nil {
		h.logger.Error("failed to fetch chat", zap.Error(err), zap.String("chat_id", chatID))
		c.String(http.StatusBadGateway, "chat storage is unavailable, please retry")
		return
	}
	if chat == nil {
		c.String(http.StatusNotFound, "chat not found")
		return
	}

	messages := make([]displayMessage, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		if m.Role == h.cfg.SystemRole {
			continue
		}
		name := m.Role
		switch m.Role {
		case h.cfg.UserRole:
			name = chat.Username
		case h.cfg.AssistantRole:
			name = h.cfg.BotName
		}
		messages = append(messages, displayMessage{Name: name, Content: m.Content})
	}

	c.HTML(http.StatusOK, "chat.html", gin.H{
		"chat_id":  chat.ID,
		"messages": messages,
	})
}

// Generate appends the prompt as a user message, sends the full history to the
// completion endpoint within the bounded wait, stores the reply, and redirects
// back to the chat page. A timeout is surfaced as 503 with retry advice and
// persists nothing beyond the already-stored user message; there is no
// internal retry.
func (h *Handler) Generate(c *gin.Context) {
	chatID := c.Param("chat_id")
	sid := middleware.SessionID(c)
	ctx := c.Request.Context()

	prompt := strings.TrimSpace(c.PostForm("prompt"))
	if prompt == "" {
		c.Redirect(http.StatusFound, "/chats/"+chatID)
		return
	}

	if _, err := h.store.AppendMessage(ctx, chatID, services.NewMessage{
		Role:      h.cfg.UserRole,
		Content:   prompt,
		SessionID: sid,
	}); err != nil {
		h.logger.Error("failed to store prompt", zap.Error(err), zap.String("chat_id", chatID))
		c.String(http.StatusBadGateway, "chat storage is unavailable, please retry")
		return
	}

	chat, err := h.store.ChatByID(ctx, chatID, sid)
	if err != nil {
		h.logger.Error("failed to fetch chat", zap.Error(err), zap.String("chat_id", chatID))
		c.String(http.StatusBadGateway, "chat storage is unavailable, please retry")
		return
	}
	if chat == nil {
		c.String(http.StatusNotFound, "chat not found")
		return
	}

	reply, err := h.lm.Generate(ctx, chat.Messages)
	if err != nil {
		if services.IsTimeout(err) {
			c.String(http.StatusServiceUnavailable, timeoutAdvice)
			return
		}
		h.logger.Error("completion failed", zap.Error(err), zap.String("chat_id", chatID))
		c.String(http.StatusBadGateway, "the language model is unavailable, please retry")
		return
	}

	if _, err := h.store.AppendMessage(ctx, chatID, services.NewMessage{
		Role:      h.cfg.AssistantRole,
		Content:   reply,
		SessionID: sid,
	}); err != nil {
		h.logger.Error("failed to store reply", zap.Error(err), zap.String("chat_id", chatID))
		c.String(http.StatusBadGateway, "chat storage is unavailable, please retry")
		return
	}

	c.Redirect(http.StatusFound, "/chats/"+chatID)
}

// Register wires the chat UI surface onto the engine. Every endpoint that
// touches chat data runs behind the browser session middleware.
func (h *Handler) Register(r *gin.Engine, session gin.HandlerFunc) {
	r.GET("/", h.Home)
	r.POST("/chats", session, h.CreateChat)
	r.GET("/chats/:chat_id", session, h.ChatPage)
	r.POST("/generate/:chat_id", session, h.Generate)
}
