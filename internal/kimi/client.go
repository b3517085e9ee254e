// Package kimi wraps the OpenAI-compatible client for the hosted
// Kimi-K2 chat-completion endpoint. Both the agent loop and the chat
// gateway talk to the model through this package.
package kimi

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoChoices indicates the endpoint returned a completion without
// any choices. Treated as a protocol error, never silently skipped.
var ErrNoChoices = errors.New("completion returned no choices")

// Client is a stateless chat-completion client. Each call is
// independent; no conversation state is kept here.
type Client struct {
	api   openai.Client
	model string
}

// New creates a client against an OpenAI-compatible endpoint.
// Temperature is pinned to 0 for deterministic, tool-friendly output.
func New(baseURL, token, model string) *Client {
	// WithMaxRetries(0) disables the SDK's default retry policy; each
	// call maps to exactly one upstream request.
	opts := []option.RequestOption{
		option.WithAPIKey(token),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Generate sends a single user message and returns the first choice's
// content. No retry, no streaming.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := c.Complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}, nil)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// Complete runs one chat completion over the given messages, offering
// tools when provided, and returns the first choice's message.
func (c *Client) Complete(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
	tools []openai.ChatCompletionToolParam,
) (openai.ChatCompletionMessage, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(0),
	}
	if len(tools) > 0 {
		params.Tools = tools
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletionMessage{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, ErrNoChoices
	}
	return completion.Choices[0].Message, nil
}
