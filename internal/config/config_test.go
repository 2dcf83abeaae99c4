package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Datastore.Driver)
	assert.Equal(t, 10*time.Second, cfg.Datastore.FetchTimeout)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 20, cfg.Assistant.MaxHistoryMessages)
	assert.Equal(t, 60000, cfg.Assistant.MaxSnapshotChars)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
  read_timeout: 5s
datastore:
  driver: pgx
  fetch_timeout: 3s
openai:
  model: gpt-4o-mini
  temperature: 0.5
assistant:
  timezone: America/New_York
  max_snapshot_chars: 1000
logger:
  format: console
`)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://portal@localhost/portal")
	t.Setenv("CLINIC_ASSISTANT_MAX_HISTORY_MESSAGES", "8")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "pgx", cfg.Datastore.Driver)
	assert.Equal(t, "postgres://portal@localhost/portal", cfg.Datastore.DSN)
	assert.Equal(t, 3*time.Second, cfg.Datastore.FetchTimeout)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.InDelta(t, 0.5, cfg.OpenAI.Temperature, 0.001)
	assert.Equal(t, "America/New_York", cfg.Assistant.Timezone)
	assert.Equal(t, 8, cfg.Assistant.MaxHistoryMessages)
	assert.Equal(t, 1000, cfg.Assistant.MaxSnapshotChars)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_EnvFile(t *testing.T) {
	const key = "LARK_DIGEST_CHAT_ID"
	prev, had := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})

	envFile := writeFile(t, ".env", "LARK_DIGEST_CHAT_ID=oc_ops_team\n")

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "oc_ops_team", cfg.Lark.DigestChatID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad driver", "datastore:\n  driver: mysql\n", "datastore.driver"},
		{"bad port", "server:\n  port: 0\n", "server.port"},
		{"bad log format", "logger:\n  format: xml\n", "logger.format"},
		{"bad timezone", "assistant:\n  timezone: Nowhere/City\n", "timezone"},
		{"malformed yaml", "server: [", "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", tt.yaml), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToContainerConfig(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	cfg.Lark.DigestChatID = "oc_1"
	cfg.Datastore.AutoMigrate = true

	cc := cfg.ToContainerConfig()
	assert.Equal(t, cfg.Server.Port, cc.Server.Port)
	assert.Equal(t, cfg.Datastore.Driver, cc.Datastore.Driver)
	assert.True(t, cc.Datastore.AutoMigrate)
	assert.Equal(t, "oc_1", cc.Lark.DigestChatID)
	assert.Equal(t, cfg.Assistant.MaxSnapshotChars, cc.Assistant.MaxSnapshotChars)
	assert.NoError(t, cc.Validate())
}
