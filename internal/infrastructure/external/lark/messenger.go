package lark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Lark rejects text messages above this size.
const maxTextBytes = 150 * 1024

// Messenger implements port.MessageSender with Lark IM messages.
type Messenger struct {
	client *lark.Client
	logger *zap.Logger
}

var _ port.MessageSender = (*Messenger)(nil)

// NewMessenger creates a new Lark message sender
func NewMessenger(client *lark.Client, logger *zap.Logger) *Messenger {
	return &Messenger{
		client: client,
		logger: logger,
	}
}

// SendText posts text to a group chat identified by chatID.
func (m *Messenger) SendText(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return errors.New("chatID cannot be empty")
	}
	if text == "" {
		return errors.New("text cannot be empty")
	}
	if len(text) > maxTextBytes {
		return fmt.Errorf("text is %d bytes, limit is %d", len(text), maxTextBytes)
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(content)).
			Build()).
		Build()

	resp, err := m.client.Im.Message.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("chat_id", chatID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("chat_id", chatID))
	return nil
}
