package toolserver

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/firescout/firescout/internal/log"
)

// Session is an initialized MCP protocol session with a running tool
// server. The handshake has already completed by the time a Session
// exists; tool discovery and invocation are safe immediately.
//
// Close releases the session and, for subprocess transports, the child
// process with it. Callers own exactly one Close on every exit path.
type Session struct {
	cs     *mcp.ClientSession
	logger log.Logger
}

// Start spawns the tool server described by spec and performs the MCP
// handshake over its stdio streams. The child inherits the parent
// environment plus spec.Env; its stderr is passed through so server
// diagnostics stay visible.
func Start(ctx context.Context, spec Spec, logger log.Logger, version string) (*Session, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Env = os.Environ()
	for k, v := range spec.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Stderr = os.Stderr

	return Open(ctx, &mcp.CommandTransport{Command: cmd}, logger, version)
}

// Open performs the MCP handshake over an arbitrary transport and
// returns the live session. Split from Start so tests can connect over
// in-memory transports without spawning a process.
func Open(ctx context.Context, transport mcp.Transport, logger log.Logger, version string) (*Session, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "firescout",
		Version: version,
	}, nil)

	cs, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("tool server handshake: %w", err)
	}

	s := &Session{cs: cs, logger: logger}
	if init := cs.InitializeResult(); init != nil && init.ServerInfo != nil {
		logger.Info("tool server connected",
			"server", init.ServerInfo.Name,
			"server_version", init.ServerInfo.Version,
		)
	}
	return s, nil
}

// ListTools queries the server's exposed tool set. The result order is
// the server's; callers must not assume stability across sessions.
// Suspends until the server responds; cancellation comes from ctx.
func (s *Session) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	res, err := s.cs.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("listing tools: %w", err)
	}
	return res, nil
}

// CallTool invokes a named tool with the given arguments.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	res, err := s.cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("calling tool %s: %w", name, err)
	}
	return res, nil
}

// Close terminates the protocol session. With a command transport this
// also closes the child's stdin and reaps the process.
func (s *Session) Close() error {
	if err := s.cs.Close(); err != nil {
		return fmt.Errorf("closing tool server session: %w", err)
	}
	return nil
}
