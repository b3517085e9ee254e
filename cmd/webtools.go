package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/firescout/firescout/internal/config"
	"github.com/firescout/firescout/internal/webtools"
)

// runWebTools starts the built-in MCP tool server on stdio. It is the
// child half of --tools builtin: the REPL spawns this binary with the
// webtools argument and talks MCP over its pipes.
func runWebTools() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	logger.Info("starting web tool server", "version", AppVersion)

	srv, err := webtools.NewServer(webtools.Config{
		Name:    "firescout-webtools",
		Version: AppVersion,
		Logger:  logger,
		Fetch:   cfg.WebTools,
	})
	if err != nil {
		return fmt.Errorf("creating tool server: %w", err)
	}

	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("tool server: %w", err)
	}
	return nil
}
