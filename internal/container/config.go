// Package container wires the assistant's components and owns their lifecycle.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/clinic-assistant/internal/infrastructure/worker"
	"github.com/garyjia/clinic-assistant/pkg/database"
)

// Config holds all configuration for the Container.
type Config struct {
	Datastore DatastoreConfig
	OpenAI    OpenAIConfig
	Lark      LarkConfig
	Assistant AssistantConfig
	Server    ServerConfig
}

// DatastoreConfig holds database connection settings. An empty DSN means
// the data store credential is missing.
type DatastoreConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// FetchTimeout bounds one snapshot fetch.
	FetchTimeout time.Duration

	// AutoMigrate applies the embedded schema on start.
	AutoMigrate bool
}

// OpenAIConfig holds chat model settings. An empty APIKey means the model
// credential is missing.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// LarkConfig holds the digest messenger settings.
type LarkConfig struct {
	AppID        string
	AppSecret    string
	BaseURL      string
	DigestChatID string

	// DigestTime is the daily HH:MM send time for the scheduled digest.
	// Empty disables the schedule.
	DigestTime string
}

// AssistantConfig holds prompt and history settings.
type AssistantConfig struct {
	// Timezone is an IANA name used for "now" and due-date windows.
	Timezone           string
	MaxHistoryMessages int
	MaxSnapshotChars   int

	// KnowledgePath overrides the embedded domain knowledge file.
	KnowledgePath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Datastore: DatastoreConfig{
			Driver:          database.DriverSQLite,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			FetchTimeout:    10 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o",
			Temperature: 0.3,
			MaxTokens:   1024,
			Timeout:     60 * time.Second,
		},
		Assistant: AssistantConfig{
			Timezone:           "America/Los_Angeles",
			MaxHistoryMessages: 20,
			MaxSnapshotChars:   60000,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
	}
}

// Validate checks structural settings. Missing credentials are not an
// error; the assistant answers with the not-configured reply instead.
func (c *Config) Validate() error {
	switch c.Datastore.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return fmt.Errorf("datastore.driver must be %q or %q, got %q",
			database.DriverSQLite, database.DriverPostgres, c.Datastore.Driver)
	}
	if c.Datastore.FetchTimeout < 0 {
		return fmt.Errorf("datastore.fetch_timeout must not be negative")
	}

	if c.OpenAI.Model == "" {
		return fmt.Errorf("openai.model is required")
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("openai.max_tokens must be positive")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("openai.temperature must be between 0 and 2")
	}

	if _, err := time.LoadLocation(c.Assistant.Timezone); err != nil {
		return fmt.Errorf("assistant.timezone: %w", err)
	}
	if c.Assistant.MaxHistoryMessages <= 0 {
		return fmt.Errorf("assistant.max_history_messages must be positive")
	}
	if c.Assistant.MaxSnapshotChars < 0 {
		return fmt.Errorf("assistant.max_snapshot_chars must not be negative")
	}

	if c.Lark.DigestTime != "" {
		if _, _, err := worker.ParseClock(c.Lark.DigestTime); err != nil {
			return fmt.Errorf("lark.digest_time: %w", err)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	return nil
}
