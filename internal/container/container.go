package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/clinic-assistant/internal/application/port"
	"github.com/garyjia/clinic-assistant/internal/application/service"
	"github.com/garyjia/clinic-assistant/internal/infrastructure/worker"
	"github.com/garyjia/clinic-assistant/internal/interfaces/http"
	"github.com/garyjia/clinic-assistant/internal/prompt"
	"github.com/garyjia/clinic-assistant/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and close in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	db        *database.DB
	fetcher   service.RecordFetcher
	model     port.ChatModel
	messenger port.MessageSender

	// Application
	knowledge *prompt.Knowledge
	location  *time.Location
	services  *ServiceBundle

	// Interfaces
	server  *http.Server
	workers *worker.WorkerManager

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Data store and record fetcher
// 2. External clients (chat model, Lark)
// 3. Domain knowledge and application services
// 4. HTTP server
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatastore(ctx); err != nil {
		return fmt.Errorf("failed to initialize datastore: %w", err)
	}

	c.model = ProvideChatModel(&c.config.OpenAI, c.logger)
	c.messenger = ProvideMessenger(&c.config.Lark, c.logger)
	c.logger.Info("External clients initialized",
		zap.Bool("has_model", c.model != nil),
		zap.Bool("has_messenger", c.messenger != nil))

	if err := c.initServices(); err != nil {
		c.closeDatastore()
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	adapter := &zapLoggerAdapter{logger: c.logger}
	c.server = http.NewServer(http.ServerConfig{
		Host:         c.config.Server.Host,
		Port:         c.config.Server.Port,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
	}, c.services.Assistant, c.Health, adapter)

	workers, err := ProvideWorkers(c.config, c.location, c.services.Report, c.messenger, c.logger)
	if err != nil {
		c.closeDatastore()
		return fmt.Errorf("failed to initialize workers: %w", err)
	}
	c.workers = workers

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

func (c *Container) initDatastore(ctx context.Context) error {
	db, err := ProvideDatabase(ctx, &c.config.Datastore, c.logger)
	if err != nil {
		return err
	}
	c.db = db
	c.fetcher = ProvideRecordFetcher(db, &c.config.Datastore, c.logger)
	if db != nil {
		c.logger.Info("Datastore initialized", zap.String("driver", db.Driver()))
	}
	return nil
}

func (c *Container) initServices() error {
	location, err := time.LoadLocation(c.config.Assistant.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}
	c.location = location

	knowledge, err := ProvideKnowledge(&c.config.Assistant)
	if err != nil {
		return err
	}
	c.knowledge = knowledge

	services, err := ProvideServices(&ServiceDeps{
		Fetcher:   c.fetcher,
		Model:     c.model,
		Messenger: c.messenger,
		Knowledge: c.knowledge,
		Location:  c.location,
		Config:    c.config,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	c.logger.Info("Application services initialized")
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	// The server goes first and outside the lock: in-flight health checks
	// take the read lock.
	var errs []error
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}
	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.closeDatastore(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeDatastore() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database", zap.Error(err))
	} else {
		c.logger.Info("Database closed")
	}
	c.db = nil
	return err
}

// StartWorkers starts the background workers. Only long-running commands
// call it.
func (c *Container) StartWorkers(ctx context.Context) error {
	if !c.ready.Load() {
		return fmt.Errorf("container not started")
	}
	return c.workers.StartAll(ctx)
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health reports whether each component is configured and reachable.
func (c *Container) Health(ctx context.Context) map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	datastore := false
	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		datastore = c.db.PingContext(pingCtx) == nil
		cancel()
	}
	return map[string]bool{
		"datastore": datastore,
		"model":     c.model != nil,
		"messenger": c.messenger != nil,
		"workers":   c.workers == nil || c.workers.GetWorkerCount() == 0 || c.workers.IsRunning(),
	}
}

// AssistantService returns the chat service.
func (c *Container) AssistantService() service.AssistantService {
	return c.services.Assistant
}

// ReportService returns the metrics and digest service.
func (c *Container) ReportService() service.ReportService {
	return c.services.Report
}

// HTTPServer returns the HTTP server.
func (c *Container) HTTPServer() *http.Server {
	return c.server
}

// DB returns the data store, or nil when it is not configured.
func (c *Container) DB() *database.DB {
	return c.db
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}
