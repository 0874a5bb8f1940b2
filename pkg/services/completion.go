package services

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"lmchat/pkg/config"
)

// CompletionClient calls the external completion endpoint over its
// OpenAI-compatible chat-completions API. Every call is bounded by the
// configured timeout; there are no retries.
type CompletionClient struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewCompletionClient(cfg config.Config, logger *zap.Logger) *CompletionClient {
	apiCfg := openai.DefaultConfig(cfg.LMAPIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.LMAPIURL, "/") + "/v1"
	return &CompletionClient{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.LMModel,
		timeout: cfg.LMTimeout,
		logger:  logger,
	}
}

// Generate sends the full message history and returns the first choice's
// content.
func (cc *CompletionClient) Generate(ctx context.Context, history []StoredMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cc.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := cc.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    cc.model,
		Messages: msgs,
	})
	if err != nil {
		cc.logger.Warn("completion call failed", zap.Error(err))
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsTimeout reports whether err is the bounded wait expiring, as opposed to
// any other upstream failure.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
