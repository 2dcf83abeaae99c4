package lark

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOpenPlatform struct {
	mu          sync.Mutex
	receiveType string
	body        map[string]string
	code        int
}

func (f *fakeOpenPlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/auth/v3/tenant_access_token/internal"):
		_, _ = w.Write([]byte(`{"code":0,"msg":"ok","tenant_access_token":"t-test","expire":7200}`))
	case r.URL.Path == "/open-apis/im/v1/messages":
		f.mu.Lock()
		defer f.mu.Unlock()
		f.receiveType = r.URL.Query().Get("receive_id_type")
		_ = json.NewDecoder(r.Body).Decode(&f.body)
		if f.code != 0 {
			_, _ = w.Write([]byte(`{"code":230002,"msg":"Bot/User can NOT be out of the chat."}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":0,"msg":"success","data":{"message_id":"om_123"}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestMessenger(t *testing.T, platform *fakeOpenPlatform) *Messenger {
	t.Helper()
	srv := httptest.NewServer(platform)
	t.Cleanup(srv.Close)
	return NewMessengerFromConfig(Config{AppID: "cli_test", AppSecret: "secret", BaseURL: srv.URL}, zap.NewNop())
}

func TestMessenger_SendText(t *testing.T) {
	platform := &fakeOpenPlatform{}
	m := newTestMessenger(t, platform)

	err := m.SendText(context.Background(), "oc_ops", "=== CLINIC DAILY DIGEST ===\nOverdue bills: \"2\"")
	require.NoError(t, err)

	platform.mu.Lock()
	defer platform.mu.Unlock()
	assert.Equal(t, "chat_id", platform.receiveType)
	assert.Equal(t, "oc_ops", platform.body["receive_id"])
	assert.Equal(t, "text", platform.body["msg_type"])

	var content map[string]string
	require.NoError(t, json.Unmarshal([]byte(platform.body["content"]), &content))
	assert.Equal(t, "=== CLINIC DAILY DIGEST ===\nOverdue bills: \"2\"", content["text"])
}

func TestMessenger_SendText_APIFailure(t *testing.T) {
	m := newTestMessenger(t, &fakeOpenPlatform{code: 230002})

	err := m.SendText(context.Background(), "oc_ops", "hello")

	assert.ErrorContains(t, err, "code=230002")
}

func TestMessenger_SendText_Validation(t *testing.T) {
	m := NewMessengerFromConfig(Config{AppID: "a", AppSecret: "b"}, zap.NewNop())

	assert.ErrorContains(t, m.SendText(context.Background(), "", "x"), "chatID")
	assert.ErrorContains(t, m.SendText(context.Background(), "oc", ""), "text")
	assert.ErrorContains(t, m.SendText(context.Background(), "oc", strings.Repeat("x", maxTextBytes+1)), "limit")
}

func TestConfig_Configured(t *testing.T) {
	assert.True(t, Config{AppID: "a", AppSecret: "b"}.Configured())
	assert.False(t, Config{AppID: "a"}.Configured())
}
