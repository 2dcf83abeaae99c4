// Package config loads settings from a YAML file, a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Datastore DatastoreConfig `mapstructure:"datastore"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Lark      LarkConfig      `mapstructure:"lark"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatastoreConfig holds database configuration
type DatastoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LarkConfig holds Lark API configuration
type LarkConfig struct {
	AppID        string `mapstructure:"app_id"`
	AppSecret    string `mapstructure:"app_secret"`
	BaseURL      string `mapstructure:"base_url"`
	DigestChatID string `mapstructure:"digest_chat_id"`
	DigestTime   string `mapstructure:"digest_time"`
}

// AssistantConfig holds prompt configuration
type AssistantConfig struct {
	Timezone           string `mapstructure:"timezone"`
	MaxHistoryMessages int    `mapstructure:"max_history_messages"`
	MaxSnapshotChars   int    `mapstructure:"max_snapshot_chars"`
	KnowledgePath      string `mapstructure:"knowledge_path"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads envFile (when present) into the environment, then configPath
// (when present), then environment overrides. Neither file is required.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)

	// Datastore defaults
	v.SetDefault("datastore.driver", "sqlite3")
	v.SetDefault("datastore.dsn", "")
	v.SetDefault("datastore.max_open_conns", 10)
	v.SetDefault("datastore.max_idle_conns", 5)
	v.SetDefault("datastore.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("datastore.fetch_timeout", 10*time.Second)
	v.SetDefault("datastore.auto_migrate", false)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.temperature", 0.3)
	v.SetDefault("openai.max_tokens", 1024)
	v.SetDefault("openai.timeout", 60*time.Second)

	// Lark defaults
	v.SetDefault("lark.app_id", "")
	v.SetDefault("lark.app_secret", "")
	v.SetDefault("lark.base_url", "")
	v.SetDefault("lark.digest_chat_id", "")
	v.SetDefault("lark.digest_time", "")

	// Assistant defaults
	v.SetDefault("assistant.timezone", "America/Los_Angeles")
	v.SetDefault("assistant.max_history_messages", 20)
	v.SetDefault("assistant.max_snapshot_chars", 60000)
	v.SetDefault("assistant.knowledge_path", "")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	// Credentials
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("datastore.dsn", "DATABASE_URL")
	v.BindEnv("lark.app_id", "LARK_APP_ID")
	v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	v.BindEnv("lark.digest_chat_id", "LARK_DIGEST_CHAT_ID")

	// Everything else as CLINIC_<SECTION>_<KEY>
	v.SetEnvPrefix("clinic")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Validate checks settings the container does not; the container validates
// the rest when it is built.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}
	return c.ToContainerConfig().Validate()
}
