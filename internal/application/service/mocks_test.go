package service

import (
	"context"
	"sync"

	"github.com/garyjia/clinic-assistant/internal/domain/entity"
	"github.com/garyjia/clinic-assistant/internal/snapshot"
)

type logEntry struct {
	level string
	msg   string
	kv    []interface{}
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (m *mockLogger) record(level, msg string, kv []interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.record("info", msg, keysAndValues)
}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.record("warn", msg, keysAndValues)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.record("error", msg, keysAndValues)
}

func (m *mockLogger) count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

type mockFetcher struct {
	records *snapshot.RecordSet
	calls   int
}

func (m *mockFetcher) Fetch(ctx context.Context) *snapshot.RecordSet {
	m.calls++
	if m.records == nil {
		return &snapshot.RecordSet{}
	}
	return m.records
}

type mockChatModel struct {
	completeFunc func(ctx context.Context, instructions string, history []entity.ChatMessage) (string, error)

	calls        int
	instructions string
	history      []entity.ChatMessage
}

func (m *mockChatModel) Complete(ctx context.Context, instructions string, history []entity.ChatMessage) (string, error) {
	m.calls++
	m.instructions = instructions
	m.history = history
	if m.completeFunc != nil {
		return m.completeFunc(ctx, instructions, history)
	}
	return "Here is your summary.", nil
}

type mockMessageSender struct {
	sendTextFunc func(ctx context.Context, chatID, text string) error

	chatID string
	text   string
}

func (m *mockMessageSender) SendText(ctx context.Context, chatID, text string) error {
	m.chatID = chatID
	m.text = text
	if m.sendTextFunc != nil {
		return m.sendTextFunc(ctx, chatID, text)
	}
	return nil
}
