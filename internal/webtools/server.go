// Package webtools implements the built-in MCP tool server: a set of
// local web scraping and crawling tools exposed over the MCP protocol.
// It is a drop-in alternative tool source for the agent when the
// hosted Firecrawl server is unavailable (firescout webtools, spawned
// by the REPL with --tools builtin).
package webtools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/firescout/firescout/internal/config"
	"github.com/firescout/firescout/internal/log"
)

// Config holds tool server configuration.
type Config struct {
	Name    string
	Version string
	Logger  log.Logger
	Fetch   config.WebToolsConfig
}

// Server wraps the MCP SDK server and the web toolset.
type Server struct {
	mcpServer *mcp.Server
	fetcher   *fetcher
	fetchCfg  config.WebToolsConfig
	logger    log.Logger
}

// NewServer creates the tool server and registers all tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		fetcher:  newFetcher(cfg.Fetch),
		fetchCfg: cfg.Fetch,
		logger:   logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return s, nil
}

// Run serves MCP on the given transport. Blocks until ctx is canceled
// or the transport closes.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// Connect attaches the server to a transport without blocking.
// Used by tests with in-memory transports.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

func (s *Server) registerTools() error {
	if err := registerTool(s, "scrape_page",
		"Fetch a web page and extract its readable article content (title, byline, text).",
		s.handleScrape); err != nil {
		return err
	}
	if err := registerTool(s, "page_links",
		"Fetch a web page and list the absolute URLs it links to.",
		s.handleLinks); err != nil {
		return err
	}
	if err := registerTool(s, "crawl_site",
		"Crawl a site breadth-first from a starting URL, staying on the same host, and return the visited pages with their titles.",
		s.handleCrawl); err != nil {
		return err
	}
	return nil
}

// registerTool infers the input schema from In and registers one tool.
func registerTool[In any](
	s *Server,
	name, description string,
	handler func(ctx context.Context, in In) (*mcp.CallToolResult, error),
) error {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return fmt.Errorf("tool %s: building input schema: %w", name, err)
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		result, err := handler(ctx, in)
		if err != nil {
			// System error, propagate over the protocol.
			return nil, nil, err
		}
		return result, nil, nil
	})
	return nil
}

// errorResult builds a tool-level error result. Fetch and parse
// failures are reported this way so the model can react to them; only
// programming errors propagate as protocol errors.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// textResult builds a successful single-text result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
