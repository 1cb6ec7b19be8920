package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agent-hub/agent-hub/internal/app"
	"github.com/agent-hub/agent-hub/internal/config"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agent-hub",
		Short:         "agent-hub - multi-executor task hub",
		Long:          `agent-hub routes user requests to specialized executors for search, file analysis, summarization, file generation, data analysis and planning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	root.AddCommand(newServeCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newHashKeyCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// bootstrap loads configuration and wires a hub. Callers must Close it.
func bootstrap(ctx context.Context) (*app.App, *config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("config error: %w", err)
	}
	logger := newLogger(cfg.Log, os.Stderr)

	repos, err := app.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, logger, err
	}
	collab, err := app.NewCollaborators(ctx, cfg, logger)
	if err != nil {
		repos.Close()
		return nil, nil, logger, err
	}
	a, err := app.New(ctx, cfg, repos, collab, logger)
	if err != nil {
		repos.Close()
		return nil, nil, logger, err
	}
	return a, cfg, logger, nil
}
