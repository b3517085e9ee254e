// Package cmd provides CLI commands for Firescout.
//
// Commands:
//   - chat (default): interactive agent REPL backed by an MCP tool server
//   - serve: HTTP chat gateway over the hosted Kimi endpoint
//   - webtools: built-in MCP tool server on stdio (scrape/links/crawl)
//
// Signal handling and graceful shutdown are implemented for all
// commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/firescout/firescout/internal/log"
)

// Execute is the main entry point for the Firescout CLI application.
func Execute() error {
	// keys.env first, then .env; both optional. Real environment wins
	// over either file.
	_ = godotenv.Load("keys.env")
	_ = godotenv.Load()

	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	if len(os.Args) < 2 {
		return runChat()
	}

	switch os.Args[1] {
	case "chat":
		return runChat()
	case "serve":
		return runServe()
	case "webtools":
		return runWebTools()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		// Bare flags (firescout --tools builtin) go to the default
		// chat command.
		if strings.HasPrefix(os.Args[1], "-") {
			return runChat()
		}
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Firescout - web-scraping agent over the Kimi-K2 model")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  firescout [chat]         Start the interactive agent REPL (default)")
	fmt.Println("  firescout serve [addr]   Start the HTTP chat gateway (default: 127.0.0.1:8700)")
	fmt.Println("  firescout webtools       Start the built-in MCP tool server on stdio")
	fmt.Println("  firescout --version      Show version information")
	fmt.Println("  firescout --help         Show this help")
	fmt.Println()
	fmt.Println("Chat flags:")
	fmt.Println("  --tools firecrawl|builtin   Tool server to spawn (default: firecrawl)")
	fmt.Println()
	fmt.Println("REPL commands:")
	fmt.Println("  quit, exit               Leave the REPL (case-insensitive)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  FIRECRAWL_API_KEY        Required for --tools firecrawl")
	fmt.Println("  KIMI_K2_HF_BASE          Required: chat endpoint base URL")
	fmt.Println("  KIMI_K2_HF_TOKEN         Required: chat endpoint token")
	fmt.Println("  KIMI_K2_HF_MODEL         Optional: model identifier override")
	fmt.Println("  DEBUG                    Optional: enable debug logging")
}
