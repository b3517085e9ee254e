package toolserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/firescout/firescout/internal/log"
)

type echoInput struct {
	Text string `json:"text"`
}

// newTestSession wires a small in-process MCP server to a Session via
// in-memory transports. No subprocess is involved; Start is only a
// thin command wrapper around the same Open path.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "test-tools", Version: "0.0.1"}, nil)

	schema, err := jsonschema.For[echoInput](nil)
	if err != nil {
		t.Fatalf("building schema: %v", err)
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "echo",
		Description: "Echo the input text back.",
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "echo: " + in.Text}},
		}, nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "always_fails",
		Description: "Return a tool-level error.",
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
		return nil, nil, errors.New("deliberate failure")
	})

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	sess, err := Open(ctx, clientTransport, log.NewNop(), "test")
	if err != nil {
		t.Fatalf("Open() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })

	return sess
}

func TestSession_ListTools(t *testing.T) {
	sess := newTestSession(t)

	res, err := sess.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools() unexpected error: %v", err)
	}
	if len(res.Tools) != 2 {
		t.Fatalf("ListTools() returned %d tools, want 2", len(res.Tools))
	}
}

func TestSession_CallTool(t *testing.T) {
	sess := newTestSession(t)

	res, err := sess.CallTool(context.Background(), "echo", map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("CallTool() unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatal("CallTool() returned error result")
	}
	if len(res.Content) == 0 {
		t.Fatal("CallTool() returned empty content")
	}

	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] type = %T, want *mcp.TextContent", res.Content[0])
	}
	if text.Text != "echo: hello" {
		t.Errorf("CallTool() text = %q, want %q", text.Text, "echo: hello")
	}
}

func TestSession_CallTool_ServerError(t *testing.T) {
	sess := newTestSession(t)

	res, err := sess.CallTool(context.Background(), "always_fails", map[string]any{"text": "x"})
	if err != nil {
		// Some transports surface tool failures as protocol errors;
		// either shape must mention the tool name.
		if !strings.Contains(err.Error(), "always_fails") {
			t.Errorf("CallTool() error %q does not mention the tool", err.Error())
		}
		return
	}
	if !res.IsError {
		t.Error("CallTool() expected IsError result for failing tool")
	}
}

func TestSession_CallTool_UnknownTool(t *testing.T) {
	sess := newTestSession(t)

	res, err := sess.CallTool(context.Background(), "no_such_tool", nil)
	if err == nil && (res == nil || !res.IsError) {
		t.Fatal("CallTool(no_such_tool) expected failure")
	}
}
