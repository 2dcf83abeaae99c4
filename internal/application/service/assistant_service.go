package service

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	"github.com/garyjia/clinic-assistant/internal/capability"
	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"github.com/garyjia/clinic-assistant/internal/prompt"
	"github.com/garyjia/clinic-assistant/internal/snapshot"
)

// Fixed replies returned instead of technical errors.
const (
	NotConfiguredMessage     = "AI assistant is not configured. Please add the model API key and the data store credential to the environment."
	UpstreamFailureMessage   = "AI service error. Please try again."
	ConnectionFailureMessage = "Connection error. Please check your connection and try again."
)

// Chat outcomes, reported alongside the reply text.
const (
	OutcomeAnswered        = "answered"
	OutcomeNotConfigured   = "not_configured"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeConnectionError = "connection_error"
)

// DefaultMaxHistoryMessages bounds the conversation forwarded to the model.
const DefaultMaxHistoryMessages = 20

var (
	// ErrEmptyConversation is returned when a chat request carries no messages.
	ErrEmptyConversation = errors.New("conversation has no messages")
	// ErrNotConfigured is returned by operations that need the data store or
	// the model when their credentials are missing.
	ErrNotConfigured = errors.New("assistant is not configured")
)

// Logger defines the logging interface used by services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RecordFetcher loads the raw records for one request.
type RecordFetcher interface {
	Fetch(ctx context.Context) *snapshot.RecordSet
}

// ChatRequest is one turn from the portal.
type ChatRequest struct {
	RequestID string
	Messages  []entity.ChatMessage
	Identity  entity.Identity
}

// ChatReply is the text shown to the user. Text is always set.
type ChatReply struct {
	Text    string
	Outcome string
}

// AssistantService answers portal chat requests.
type AssistantService interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
}

// AssistantConfig holds the tunables of the assistant.
type AssistantConfig struct {
	Location           *time.Location
	MaxHistoryMessages int
	MaxSnapshotChars   int
	Now                func() time.Time
}

type assistantServiceImpl struct {
	fetcher    RecordFetcher
	model      port.ChatModel
	knowledge  *prompt.Knowledge
	composer   *prompt.Composer
	location   *time.Location
	maxHistory int
	now        func() time.Time
	logger     Logger
}

// NewAssistantService creates a new AssistantService. A nil fetcher or model
// means the matching credential is missing; every chat then gets
// NotConfiguredMessage.
func NewAssistantService(
	fetcher RecordFetcher,
	model port.ChatModel,
	knowledge *prompt.Knowledge,
	cfg AssistantConfig,
	logger Logger,
) AssistantService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxHistoryMessages <= 0 {
		cfg.MaxHistoryMessages = DefaultMaxHistoryMessages
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &assistantServiceImpl{
		fetcher:    fetcher,
		model:      model,
		knowledge:  knowledge,
		composer:   prompt.NewComposer(cfg.MaxSnapshotChars),
		location:   cfg.Location,
		maxHistory: cfg.MaxHistoryMessages,
		now:        cfg.Now,
		logger:     logger,
	}
}

// Chat runs one synthesis pass and one model call. Collaborator failures are
// logged and turned into fixed replies; only an empty conversation is an error.
func (s *assistantServiceImpl) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if len(req.Messages) == 0 {
		return nil, ErrEmptyConversation
	}
	if s.fetcher == nil || s.model == nil {
		s.logger.Warn("Chat request rejected, assistant not configured",
			"request_id", req.RequestID,
			"has_datastore", s.fetcher != nil,
			"has_model", s.model != nil)
		return &ChatReply{Text: NotConfiguredMessage, Outcome: OutcomeNotConfigured}, nil
	}

	start := time.Now()
	now := s.now().In(s.location)
	history := recentHistory(req.Messages, s.maxHistory)

	s.logger.Info("Chat request received",
		"request_id", req.RequestID,
		"authenticated", req.Identity.Authenticated,
		"role", req.Identity.Role,
		"messages", len(req.Messages),
		"forwarded", len(history))

	var snap string
	if req.Identity.Authenticated {
		metrics := snapshot.Aggregate(s.fetcher.Fetch(ctx), now)
		if len(metrics.Failed) > 0 {
			s.logger.Warn("Snapshot built with missing data",
				"request_id", req.RequestID,
				"failed", metrics.Failed)
		}
		snap = snapshot.Render(metrics)
	}

	instructions := s.composer.Compose(prompt.Input{
		Knowledge: s.knowledge,
		Narrative: capability.Narrate(req.Identity),
		Snapshot:  snap,
		Now:       now,
		Identity:  req.Identity,
	})

	text, err := s.model.Complete(ctx, instructions, history)
	if err != nil {
		reply := &ChatReply{Text: ConnectionFailureMessage, Outcome: OutcomeConnectionError}
		if errors.Is(err, port.ErrUpstream) {
			reply = &ChatReply{Text: UpstreamFailureMessage, Outcome: OutcomeUpstreamError}
		}
		s.logger.Error("Model call failed",
			"error", err,
			"request_id", req.RequestID,
			"outcome", reply.Outcome)
		return reply, nil
	}

	s.logger.Info("Chat reply generated",
		"request_id", req.RequestID,
		"instructions_length", len(instructions),
		"reply_length", len(text),
		"elapsed", time.Since(start))

	return &ChatReply{Text: text, Outcome: OutcomeAnswered}, nil
}

// recentHistory keeps the last max messages. The result never starts with
// an assistant turn unless that is all there is.
func recentHistory(messages []entity.ChatMessage, max int) []entity.ChatMessage {
	if len(messages) > max {
		messages = messages[len(messages)-max:]
	}
	for len(messages) > 1 && messages[0].Role == entity.ChatRoleAssistant {
		messages = messages[1:]
	}
	out := make([]entity.ChatMessage, len(messages))
	copy(out, messages)
	return out
}
