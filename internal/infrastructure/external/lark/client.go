package lark

import (
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"go.uber.org/zap"
)

// Config holds Lark client configuration
type Config struct {
	AppID     string
	AppSecret string
	// BaseURL overrides the open platform domain, e.g. lark.LarkBaseUrl for
	// the international tenant. Empty uses the SDK default.
	BaseURL string
}

// Configured reports whether app credentials are present.
func (c Config) Configured() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// NewSDKClient creates the Lark SDK client with token caching.
func NewSDKClient(cfg Config) *lark.Client {
	opts := []lark.ClientOptionFunc{
		lark.WithLogLevel(larkcore.LogLevelWarn),
		lark.WithEnableTokenCache(true),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lark.WithOpenBaseUrl(cfg.BaseURL))
	}
	return lark.NewClient(cfg.AppID, cfg.AppSecret, opts...)
}

// NewMessengerFromConfig builds a Messenger with its own SDK client.
func NewMessengerFromConfig(cfg Config, logger *zap.Logger) *Messenger {
	return NewMessenger(NewSDKClient(cfg), logger)
}
