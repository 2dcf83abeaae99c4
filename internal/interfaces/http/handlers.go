package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/clinic-assistant/internal/application/service"
	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"github.com/garyjia/clinic-assistant/pkg/utils"
)

const maxChatBodyBytes = 1 << 20

// Handlers contains all HTTP request handlers
type Handlers struct {
	assistant service.AssistantService
	health    HealthCheck
	logger    Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(assistant service.AssistantService, health HealthCheck, logger Logger) *Handlers {
	return &Handlers{
		assistant: assistant,
		health:    health,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string          `json:"status"`
	Timestamp  string          `json:"timestamp"`
	Components map[string]bool `json:"components,omitempty"`
}

// ChatMessageRequest is one conversation turn.
type ChatMessageRequest struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// IdentityRequest describes the signed-in portal user.
type IdentityRequest struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name" binding:"max=200"`
	Email         string `json:"email" binding:"omitempty,email"`
	Role          string `json:"role" binding:"max=50"`
	Location      string `json:"location" binding:"max=200"`
	Module        string `json:"module" binding:"max=100"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []ChatMessageRequest `json:"messages" binding:"required,min=1,dive"`
	Identity IdentityRequest      `json:"identity"`
}

// ContentBlock is one block of assistant output.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Content   []ContentBlock `json:"content"`
	RequestID string         `json:"request_id"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.health != nil {
		resp.Components = h.health(c.Request.Context())
		for _, ok := range resp.Components {
			if !ok {
				resp.Status = "degraded"
			}
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    resp,
	})
}

// Chat handles POST /api/chat. Collaborator failures still answer 200 with
// a fixed text; only malformed requests are rejected.
func (h *Handlers) Chat(c *gin.Context) {
	requestID := c.GetString(requestIDKey)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxChatBodyBytes)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid chat request", "error", err, "request_id", requestID)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid chat request",
		})
		return
	}

	reply, err := h.assistant.Chat(c.Request.Context(), service.ChatRequest{
		RequestID: requestID,
		Messages:  toMessages(req.Messages),
		Identity:  toIdentity(req.Identity),
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyConversation) {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "conversation has no messages"})
			return
		}
		h.logger.Error("Chat failed", "error", err, "request_id", requestID)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "chat failed"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Content:   []ContentBlock{{Type: "text", Text: reply.Text}},
		RequestID: requestID,
	})
}

func toMessages(in []ChatMessageRequest) []entity.ChatMessage {
	out := make([]entity.ChatMessage, 0, len(in))
	for _, m := range in {
		content := utils.SanitizeString(m.Content)
		if content == "" {
			continue
		}
		out = append(out, entity.ChatMessage{Role: m.Role, Content: content})
	}
	return out
}

func toIdentity(in IdentityRequest) entity.Identity {
	return entity.Identity{
		Authenticated: in.Authenticated,
		Name:          utils.SanitizeString(in.Name),
		Email:         in.Email,
		Role:          in.Role,
		Location:      utils.SanitizeString(in.Location),
		Module:        utils.SanitizeString(in.Module),
	}
}
