package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/x-research-team/unirt/config"
	"github.com/x-research-team/unirt/rt/loader"
	"github.com/x-research-team/unirt/rt/query"
)

var (
	configPath string
	logLevel   string
	logger     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "urinfo",
	Short: "Inspect platforms, devices and kernels exposed by unirt backends",
	Long: `urinfo enumerates every platform and device of the configured backends
and prints their properties using the size-discovery / fill query protocol.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(cmd, logLevel)
	},
}

// setupLogger устанавливает JSON-логгер с заданным уровнем в поток ошибок команды.
func setupLogger(cmd *cobra.Command, name string) {
	var level slog.Level
	switch name {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to TOML configuration (default: host backend only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

// loadConfig читает конфигурацию; уровень логирования из флага имеет приоритет.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// openLoader собирает загрузчик по конфигурации команды. Логгер
// пересоздается с уровнем из файла, если флаг --log-level не задан.
func openLoader(cmd *cobra.Command) (*loader.Loader, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	setupLogger(cmd, cfg.LogLevel)
	return loader.New(cmd.Context(), cfg, query.WithLogger(logger))
}

func closeLoader(ctx context.Context, l *loader.Loader) {
	if err := l.Close(ctx); err != nil {
		logger.Error("failed to close loader", slog.Any("error", err))
	}
}
