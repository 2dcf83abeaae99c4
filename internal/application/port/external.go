package port

import (
	"context"
	"errors"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
)

var (
	// ErrUpstream marks a non-success response from the model service.
	ErrUpstream = errors.New("model service returned an error")

	// ErrUnavailable marks a network failure or timeout reaching the model service.
	ErrUnavailable = errors.New("model service unreachable")
)

// ChatModel sends grounding instructions plus conversation history to a
// language model and returns the reply text.
type ChatModel interface {
	Complete(ctx context.Context, instructions string, history []entity.ChatMessage) (string, error)
}

// MessageSender delivers plain text to a team chat.
type MessageSender interface {
	SendText(ctx context.Context, chatID, text string) error
}
