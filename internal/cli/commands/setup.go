// Package commands implements the floodlink CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/floodlink-io/floodlink/internal/cli/config"
	"github.com/floodlink-io/floodlink/internal/engine"
	"github.com/floodlink-io/floodlink/internal/lfp"
	"github.com/floodlink-io/floodlink/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext resolves config and logger for a command invocation.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// getConfig returns the current configuration. It uses
// config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	return &config.Config{
		Engine:    getEnvOrDefault("FLOODLINK_ENGINE", config.DefaultEngine),
		StatePath: getEnvOrDefault("FLOODLINK_STATE_PATH", config.DefaultStateFile),
		LogLevel:  getEnvOrDefault("FLOODLINK_LOG_LEVEL", config.DefaultLogLevel),
		Verbose:   os.Getenv("FLOODLINK_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// newModel builds an adapter around the configured engine.
func newModel(cfg *config.Config, logger *slog.Logger) (*lfp.LFP, error) {
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return nil, err
	}
	return lfp.New(lfp.Config{Engine: eng, Logger: logger})
}

// openStore opens the run-history store, creating its directory and
// schema as needed. The caller must Close it.
func openStore(cfg *config.Config, logger *slog.Logger) (state.Store, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}
