package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"lmchat/middleware"
)

// ErrChatExists signals that a chat already exists for the username+session
// pair. Callers fall back to fetching the existing chat; the end user never
// sees this as an error.
var ErrChatExists = errors.New("chat already exists for this username and session")

// NewMessage is the payload for creating a message.
type NewMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}

// StoredMessage is a message as returned by the persistence API.
type StoredMessage struct {
	ID        string `json:"id"`
	ChatID    string `json:"chat_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}

// StoredChat is a chat with its full message history as returned by the
// persistence API.
type StoredChat struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	SessionID string          `json:"session_id"`
	Messages  []StoredMessage `json:"messages"`
}

// ChatStore is the chat UI's HTTP client for the persistence API. The session
// token travels in the X-Session-ID header on reads and inside JSON bodies on
// writes, never in a URL.
type ChatStore struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewChatStore(baseURL string, logger *zap.Logger) *ChatStore {
	return &ChatStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type createChatRequest struct {
	Username  string       `json:"username"`
	SessionID string       `json:"session_id"`
	Messages  []NewMessage `json:"messages"`
}

// CreateChat creates a chat seeded with the given messages. Returns
// ErrChatExists when the username already has a chat under this session.
func (s *ChatStore) CreateChat(ctx context.Context, username, sessionID string, seed []NewMessage) (*StoredChat, error) {
	body := createChatRequest{Username: username, SessionID: sessionID, Messages: seed}

	var chat StoredChat
	status, err := s.post(ctx, "/chats", body, &chat)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &chat, nil
	case http.StatusBadRequest:
		return nil, ErrChatExists
	default:
		return nil, fmt.Errorf("db api: POST /chats returned %d", status)
	}
}

// ChatByID fetches a chat by id within the session scope. A scope mismatch or
// unknown id yields (nil, nil).
func (s *ChatStore) ChatByID(ctx context.Context, chatID, sessionID string) (*StoredChat, error) {
	return s.getChat(ctx, "/chats/"+chatID, sessionID)
}

// ChatByUsername fetches a chat by username within the session scope. A scope
// mismatch or unknown username yields (nil, nil).
func (s *ChatStore) ChatByUsername(ctx context.Context, username, sessionID string) (*StoredChat, error) {
	return s.getChat(ctx, "/chats/username/"+username, sessionID)
}

// AppendMessage appends a message to an existing chat.
func (s *ChatStore) AppendMessage(ctx context.Context, chatID string, msg NewMessage) (*StoredMessage, error) {
	path := "/chats/" + chatID + "/message"
	var created StoredMessage
	status, err := s.post(ctx, path, msg, &created)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("db api: POST %s returned %d", path, status)
	}
	return &created, nil
}

func (s *ChatStore) getChat(ctx context.Context, path, sessionID string) (*StoredChat, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(middleware.SessionHeader, sessionID)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("db api: GET %s returned %d", path, resp.StatusCode)
	}

	// Not-found is served as a JSON null body, which decodes to a nil pointer.
	var chat *StoredChat
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("db api: decoding GET %s: %w", path, err)
	}
	return chat, nil
}

// post sends body as JSON and decodes a 200 response into out. Non-200
// statuses are returned to the caller for mapping; the body is logged.
func (s *ChatStore) post(ctx context.Context, path string, body, out any) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		s.logger.Warn("db api call failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("db api: decoding POST %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
