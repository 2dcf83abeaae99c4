package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/clinic-assistant/internal/config"
	"github.com/garyjia/clinic-assistant/internal/container"
	"github.com/garyjia/clinic-assistant/pkg/utils"
)

const version = "1.0.0"

type rootOptions struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "clinic-assistant",
		Short:        "AI assistant for the clinic operations portal",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to a .env file loaded before the environment")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(snapshotCmd(opts))
	rootCmd.AddCommand(digestCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))

	return rootCmd
}

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath, opts.envFile)
			if err != nil {
				return err
			}
			logger, err := utils.NewLogger(utils.LoggerConfig{
				Level:      cfg.Logger.Level,
				OutputPath: cfg.Logger.OutputPath,
				Format:     cfg.Logger.Format,
				Service:    "clinic-assistant",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting clinic assistant",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port))

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.Close()

	if err := c.StartWorkers(ctx); err != nil {
		return err
	}

	if err := c.HTTPServer().Start(ctx); err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("Server exited successfully")
	return nil
}

// startCLI loads configuration and starts a container whose logs go to
// stderr.
func startCLI(ctx context.Context, opts *rootOptions) (*container.Container, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return nil, err
	}
	logger, err := utils.NewCLILogger(cfg.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
