package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	"github.com/garyjia/clinic-assistant/internal/application/service"
	"github.com/garyjia/clinic-assistant/internal/infrastructure/external/lark"
	"github.com/garyjia/clinic-assistant/internal/infrastructure/external/openai"
	"github.com/garyjia/clinic-assistant/internal/infrastructure/persistence/repository"
	"github.com/garyjia/clinic-assistant/internal/infrastructure/worker"
	"github.com/garyjia/clinic-assistant/internal/prompt"
	"github.com/garyjia/clinic-assistant/internal/snapshot"
	"github.com/garyjia/clinic-assistant/pkg/database"
)

// ProvideDatabase opens the data store and applies the embedded schema when
// AutoMigrate is set. It returns nil without error when no DSN is configured.
func ProvideDatabase(ctx context.Context, cfg *DatastoreConfig, logger *zap.Logger) (*database.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("datastore config is required")
	}
	if cfg.DSN == "" {
		logger.Warn("Data store credential missing, assistant will report not configured")
		return nil, nil
	}

	db, err := database.New(ctx, database.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if _, err := database.NewMigrator(db, logger).RunMigrations(ctx, database.Migrations()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return db, nil
}

// ProvideRecordFetcher builds the snapshot fetcher over the record
// repository. A nil db yields a nil fetcher.
func ProvideRecordFetcher(db *database.DB, cfg *DatastoreConfig, logger *zap.Logger) service.RecordFetcher {
	if db == nil {
		return nil
	}
	store := repository.NewRecordRepository(db.DB, logger)
	return snapshot.NewFetcher(store, cfg.FetchTimeout, logger)
}

// ProvideChatModel builds the chat model client, or nil without an API key.
func ProvideChatModel(cfg *OpenAIConfig, logger *zap.Logger) port.ChatModel {
	if cfg.APIKey == "" {
		logger.Warn("Model API key missing, assistant will report not configured")
		return nil
	}
	return openai.NewChatModel(openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}, logger)
}

// ProvideMessenger builds the Lark messenger, or nil without app credentials.
func ProvideMessenger(cfg *LarkConfig, logger *zap.Logger) port.MessageSender {
	larkCfg := lark.Config{AppID: cfg.AppID, AppSecret: cfg.AppSecret, BaseURL: cfg.BaseURL}
	if !larkCfg.Configured() {
		return nil
	}
	return lark.NewMessengerFromConfig(larkCfg, logger)
}

// ProvideKnowledge loads the domain knowledge file, falling back to the
// embedded default when no path is set.
func ProvideKnowledge(cfg *AssistantConfig) (*prompt.Knowledge, error) {
	knowledge, err := prompt.LoadKnowledge(cfg.KnowledgePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge: %w", err)
	}
	return knowledge, nil
}

// ServiceDeps holds dependencies for creating services. Fetcher, Model and
// Messenger may be nil.
type ServiceDeps struct {
	Fetcher   service.RecordFetcher
	Model     port.ChatModel
	Messenger port.MessageSender
	Knowledge *prompt.Knowledge
	Location  *time.Location
	Config    *Config
	Logger    *zap.Logger
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Assistant service.AssistantService
	Report    service.ReportService
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Knowledge == nil {
		return nil, fmt.Errorf("knowledge is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	return &ServiceBundle{
		Assistant: service.NewAssistantService(
			deps.Fetcher,
			deps.Model,
			deps.Knowledge,
			service.AssistantConfig{
				Location:           deps.Location,
				MaxHistoryMessages: deps.Config.Assistant.MaxHistoryMessages,
				MaxSnapshotChars:   deps.Config.Assistant.MaxSnapshotChars,
			},
			serviceLogger,
		),
		Report: service.NewReportService(
			deps.Fetcher,
			deps.Messenger,
			deps.Config.Lark.DigestChatID,
			deps.Location,
			serviceLogger,
		),
	}, nil
}

// ProvideWorkers creates the worker manager and registers the scheduled
// digest when a send time, a chat and a messenger are all configured.
func ProvideWorkers(
	cfg *Config,
	location *time.Location,
	reports service.ReportService,
	messenger port.MessageSender,
	logger *zap.Logger,
) (*worker.WorkerManager, error) {
	manager := worker.NewWorkerManager(logger)

	if cfg.Lark.DigestTime == "" {
		return manager, nil
	}
	if messenger == nil || cfg.Lark.DigestChatID == "" {
		logger.Warn("Digest time set but Lark chat is not configured, schedule disabled",
			zap.String("digest_time", cfg.Lark.DigestTime))
		return manager, nil
	}

	digest, err := worker.NewDigestWorker(worker.DigestWorkerConfig{
		At:       cfg.Lark.DigestTime,
		Location: location,
	}, reports, logger)
	if err != nil {
		return nil, err
	}
	manager.Register(digest)
	return manager, nil
}

// zapLoggerAdapter adapts zap.Logger to the key/value Logger interfaces of
// the service and http packages.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
