package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openai/openai-go"

	"github.com/firescout/firescout/internal/log"
	"github.com/firescout/firescout/internal/toolserver"
)

type shoutInput struct {
	Text string `json:"text"`
}

// discoverySession connects a Session to an in-process MCP server via
// in-memory transports. The server exposes "shout" (uppercases its
// input) and "boom" (always returns a tool-level error).
func discoverySession(t *testing.T) *toolserver.Session {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "discovery-test", Version: "0.0.1"}, nil)

	schema, err := jsonschema.For[shoutInput](nil)
	if err != nil {
		t.Fatalf("building schema: %v", err)
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "shout",
		Description: "Uppercase the input.",
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in shoutInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "SHOUT:" + strings.ToUpper(in.Text)}},
		}, nil, nil
	})
	mcp.AddTool(server, &mcp.Tool{
		Name:        "boom",
		Description: "Fail every invocation.",
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in shoutInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "it broke"}},
			IsError: true,
		}, nil, nil
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	sess, err := toolserver.Open(ctx, clientTransport, log.NewNop(), "test")
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })

	return sess
}

// toolByName finds a discovered tool, failing the test when absent.
func toolByName(t *testing.T, tools []Tool, name string) Tool {
	t.Helper()
	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not discovered (got %v)", name, Names(tools))
	return Tool{}
}

func TestDiscover(t *testing.T) {
	sess := discoverySession(t)

	tools, err := Discover(context.Background(), sess)
	if err != nil {
		t.Fatalf("Discover() unexpected error: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("Discover() returned %d tools, want 2", len(tools))
	}

	tool := toolByName(t, tools, "shout")
	if tool.Description == "" {
		t.Error("tool.Description is empty")
	}
	if tool.Schema["type"] != "object" {
		t.Errorf("tool.Schema = %v, want object schema", tool.Schema)
	}
}

func TestDiscover_InvokeRoundTrip(t *testing.T) {
	sess := discoverySession(t)

	tools, err := Discover(context.Background(), sess)
	if err != nil {
		t.Fatalf("Discover() unexpected error: %v", err)
	}

	out, err := toolByName(t, tools, "shout").Invoke(context.Background(), `{"text":"hello"}`)
	if err != nil {
		t.Fatalf("Invoke() unexpected error: %v", err)
	}
	if out != "SHOUT:HELLO" {
		t.Errorf("Invoke() = %q", out)
	}
}

// A full turn over a live session: the model picks the failing tool,
// the error result surfaces as a turn error, and the caller's history
// is exactly as it was before the turn.
func TestRun_DiscoveredToolFailure(t *testing.T) {
	sess := discoverySession(t)

	tools, err := Discover(context.Background(), sess)
	if err != nil {
		t.Fatalf("Discover() unexpected error: %v", err)
	}

	model := &scriptedModel{script: []scriptStep{
		toolCall("call_1", "boom", `{"text":"x"}`),
	}}
	ag := New(model, tools, 4, log.NewNop())

	history := NewHistory()
	history = append(history, openai.UserMessage("break something"))

	updated, _, err := ag.Run(context.Background(), history)
	if err == nil {
		t.Fatal("Run() expected error from failing tool")
	}
	if !strings.Contains(err.Error(), "it broke") {
		t.Errorf("Run() error %q does not carry the tool's message", err.Error())
	}
	if len(updated) != 2 {
		t.Errorf("Run() history length = %d, want 2 (system + user, unchanged)", len(updated))
	}
}

func TestDiscover_NotCached(t *testing.T) {
	sess := discoverySession(t)
	ctx := context.Background()

	first, err := Discover(ctx, sess)
	if err != nil {
		t.Fatalf("Discover() unexpected error: %v", err)
	}
	second, err := Discover(ctx, sess)
	if err != nil {
		t.Fatalf("second Discover() unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Errorf("repeat discovery returned %d tools, want %d", len(second), len(first))
	}
}
