package config

import (
	"github.com/garyjia/clinic-assistant/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Datastore: container.DatastoreConfig{
			Driver:          c.Datastore.Driver,
			DSN:             c.Datastore.DSN,
			MaxOpenConns:    c.Datastore.MaxOpenConns,
			MaxIdleConns:    c.Datastore.MaxIdleConns,
			ConnMaxLifetime: c.Datastore.ConnMaxLifetime,
			FetchTimeout:    c.Datastore.FetchTimeout,
			AutoMigrate:     c.Datastore.AutoMigrate,
		},
		OpenAI: container.OpenAIConfig{
			APIKey:      c.OpenAI.APIKey,
			BaseURL:     c.OpenAI.BaseURL,
			Model:       c.OpenAI.Model,
			Temperature: c.OpenAI.Temperature,
			MaxTokens:   c.OpenAI.MaxTokens,
			Timeout:     c.OpenAI.Timeout,
		},
		Lark: container.LarkConfig{
			AppID:        c.Lark.AppID,
			AppSecret:    c.Lark.AppSecret,
			BaseURL:      c.Lark.BaseURL,
			DigestChatID: c.Lark.DigestChatID,
			DigestTime:   c.Lark.DigestTime,
		},
		Assistant: container.AssistantConfig{
			Timezone:           c.Assistant.Timezone,
			MaxHistoryMessages: c.Assistant.MaxHistoryMessages,
			MaxSnapshotChars:   c.Assistant.MaxSnapshotChars,
			KnowledgePath:      c.Assistant.KnowledgePath,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}
}
