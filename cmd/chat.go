package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/openai/openai-go"

	"github.com/firescout/firescout/internal/agent"
	"github.com/firescout/firescout/internal/config"
	"github.com/firescout/firescout/internal/kimi"
	"github.com/firescout/firescout/internal/toolserver"
)

// exitCommands terminate the REPL without invoking the agent.
// Matched case-insensitively against the trimmed input line.
var exitCommands = map[string]bool{
	"quit": true,
	"exit": true,
}

// runChat wires the full agent pipeline: tool-server subprocess, MCP
// session, tool discovery, model client, then the REPL loop. Teardown
// order is the reverse of acquisition on every exit path.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	toolSource, err := parseChatFlags(cfg.ToolSource)
	if err != nil {
		return fmt.Errorf("parsing chat flags: %w", err)
	}
	cfg.ToolSource = toolSource
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	spec, err := buildSpec(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	sess, err := toolserver.Start(ctx, spec, logger, AppVersion)
	if err != nil {
		return fmt.Errorf("starting tool server: %w", err)
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil {
			logger.Warn("closing tool-server session", "error", closeErr)
		}
	}()

	tools, err := agent.Discover(ctx, sess)
	if err != nil {
		return fmt.Errorf("discovering tools: %w", err)
	}

	model := kimi.New(cfg.KimiBase, cfg.KimiToken, cfg.KimiModel)
	ag := agent.New(model, tools, cfg.MaxTurns, logger)

	fmt.Printf("Available Tools: %s\n", strings.Join(agent.Names(tools), ", "))
	fmt.Println(strings.Repeat("-", 40))

	return runREPL(ctx, os.Stdin, os.Stdout, ag.Run, cfg.MaxMessageChars)
}

// buildSpec preflights and prepares the tool-server process spec for
// the configured source. Nothing is spawned here.
func buildSpec(cfg *config.Config) (toolserver.Spec, error) {
	switch cfg.ToolSource {
	case config.ToolSourceBuiltin:
		return toolserver.BuiltinSpec()
	default:
		return toolserver.FirecrawlSpec(cfg)
	}
}

// parseChatFlags reads the chat subcommand's flags. The positional
// "chat" word is optional, so flags may start at os.Args[1] or [2].
func parseChatFlags(defaultSource string) (string, error) {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "chat" {
		args = args[1:]
	}

	chatFlags := flag.NewFlagSet("chat", flag.ContinueOnError)
	chatFlags.SetOutput(os.Stderr)
	source := chatFlags.String("tools", defaultSource, "Tool server to spawn (firecrawl or builtin)")

	if err := chatFlags.Parse(args); err != nil {
		return "", err
	}
	return *source, nil
}

// turnRunner is the agent dependency of the REPL loop. Matches
// (*agent.Agent).Run.
type turnRunner func(ctx context.Context, history agent.History) (agent.History, string, error)

// runREPL is the interactive loop. One user turn completes fully,
// including all nested tool calls, before the next line is read.
// Turn failures are printed and the loop continues; the history keeps
// the user's message but no partial assistant output.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, run turnRunner, maxChars int) error {
	history := agent.NewHistory()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// Reading happens off the loop goroutine so an interrupt is acted
	// on even while blocked waiting for input.
	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, "You: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		case input, ok := <-lines:
			if !ok {
				fmt.Fprintln(out, "\nGoodbye!")
				return scanner.Err()
			}
			line = input
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		history = append(history, openai.UserMessage(truncate(line, maxChars)))

		updated, answer, err := run(ctx, history)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		history = updated
		fmt.Fprintf(out, "Agent: %s\n", answer)
	}
}

// truncate caps a message at max characters, counted in runes so a
// multi-byte character is never split.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
