package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// ChatModelConfig configures the chat completion client.
type ChatModelConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// ChatModel implements port.ChatModel over an OpenAI-compatible chat
// completions endpoint.
type ChatModel struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

var _ port.ChatModel = (*ChatModel)(nil)

// NewChatModel creates a new chat model client
func NewChatModel(cfg ChatModelConfig, logger *zap.Logger) *ChatModel {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &ChatModel{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// Complete sends instructions as the system message followed by history and
// returns the first choice. Errors wrap port.ErrUpstream when the service
// answered with a failure and port.ErrUnavailable when it could not be reached.
func (m *ChatModel) Complete(ctx context.Context, instructions string, history []entity.ChatMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: instructions,
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == entity.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
		MaxTokens:   m.maxTokens,
		Messages:    messages,
	})
	if err != nil {
		classified := classify(err)
		m.logger.Error("OpenAI API call failed",
			zap.Error(err),
			zap.Bool("upstream", errors.Is(classified, port.ErrUpstream)))
		return "", classified
	}

	if len(resp.Choices) == 0 {
		m.logger.Error("OpenAI returned no choices", zap.String("id", resp.ID))
		return "", fmt.Errorf("%w: no choices in response", port.ErrUpstream)
	}

	m.logger.Debug("Chat completion received",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))

	return resp.Choices[0].Message.Content, nil
}

// classify maps a go-openai error onto the port sentinels.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d: %s", port.ErrUpstream, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return fmt.Errorf("%w: status %d: %v", port.ErrUpstream, reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("%w: %v", port.ErrUnavailable, err)
}
