package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/openai/openai-go"

	"github.com/firescout/firescout/internal/toolserver"
)

// Tool is one callable capability discovered from the tool server:
// a display name, a description, a JSON input schema and an invocation
// bound to the session it was discovered on. The agent depends only on
// this shape, never on concrete tool identities.
type Tool struct {
	Name        string
	Description string
	Schema      openai.FunctionParameters

	invoke func(ctx context.Context, args map[string]any) (string, error)
}

// Param converts the descriptor into the model-facing tool definition.
func (t Tool) Param() openai.ChatCompletionToolParam {
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  t.Schema,
		},
	}
}

// Invoke runs the tool with model-chosen arguments (a JSON object
// encoded as text, as produced by tool calls) and returns the textual
// result. A tool-level error result is surfaced as an error.
func (t Tool) Invoke(ctx context.Context, rawArgs string) (string, error) {
	var args map[string]any
	if s := strings.TrimSpace(rawArgs); s != "" {
		if err := json.Unmarshal([]byte(s), &args); err != nil {
			return "", fmt.Errorf("tool %s: decoding arguments: %w", t.Name, err)
		}
	}
	return t.invoke(ctx, args)
}

// Discover queries the active session for its exposed tools and returns
// descriptors in server order. Not cached: a second call re-queries the
// server. The session must already be initialized.
func Discover(ctx context.Context, sess *toolserver.Session) ([]Tool, error) {
	res, err := sess.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]Tool, 0, len(res.Tools))
	for _, mt := range res.Tools {
		name := mt.Name
		if name == "" {
			name = fmt.Sprintf("tool_%d", len(tools))
		}

		schema, err := schemaToParameters(mt.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", name, err)
		}

		toolName := name
		tools = append(tools, Tool{
			Name:        name,
			Description: mt.Description,
			Schema:      schema,
			invoke: func(ctx context.Context, args map[string]any) (string, error) {
				result, err := sess.CallTool(ctx, toolName, args)
				if err != nil {
					return "", err
				}
				return flattenResult(toolName, result)
			},
		})
	}
	return tools, nil
}

// Params converts a discovered tool set into model-facing definitions.
func Params(tools []Tool) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		params = append(params, t.Param())
	}
	return params
}

// Names lists tool display names, for the startup banner.
func Names(tools []Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}

// schemaToParameters converts a tool's input schema, which arrives
// untyped from the protocol, into the loose map shape the completion
// API expects. A nil schema becomes an empty object schema, which the
// API accepts for parameterless tools.
func schemaToParameters(schema any) (openai.FunctionParameters, error) {
	if schema == nil {
		return openai.FunctionParameters{"type": "object"}, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encoding input schema: %w", err)
	}
	var params openai.FunctionParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decoding input schema: %w", err)
	}
	// A typed nil inside the interface marshals to JSON null.
	if params == nil {
		return openai.FunctionParameters{"type": "object"}, nil
	}
	return params, nil
}

// flattenResult joins a call result's text segments into one string.
// Error results become errors so the loop can fail the turn.
func flattenResult(name string, result *mcp.CallToolResult) (string, error) {
	var sb strings.Builder
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(text.Text)
		}
	}
	if result.IsError {
		msg := sb.String()
		if msg == "" {
			msg = "tool reported an error with no detail"
		}
		return "", fmt.Errorf("tool %s failed: %s", name, msg)
	}
	return sb.String(), nil
}
