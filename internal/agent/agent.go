// Package agent implements the conversational reason-then-act loop:
// given a growing message history, the model decides per turn whether
// to invoke a discovered tool or produce a final answer, iterating
// until it answers.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/firescout/firescout/internal/log"
)

// SystemPrompt seeds every conversation. It names the capability
// class, not concrete tool identities; those arrive via discovery.
const SystemPrompt = "You can scrape, crawl and extract web data using the connected tools. " +
	"Decide when to use tools; think step by step."

// ErrMaxTurns indicates the model kept requesting tools without ever
// producing a final answer within the configured bound.
var ErrMaxTurns = errors.New("no final answer within the turn limit")

// History is the ordered conversation owned by the caller. It grows
// monotonically; the agent never truncates or reorders it.
type History = []openai.ChatCompletionMessageParamUnion

// NewHistory returns a history seeded with the system instruction.
func NewHistory() History {
	return History{openai.SystemMessage(SystemPrompt)}
}

// Completer is the model dependency. *kimi.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, tools []openai.ChatCompletionToolParam) (openai.ChatCompletionMessage, error)
}

// Agent binds a chat model to a discovered tool set. Its state is
// immutable after construction; conversation state lives in the
// History the caller passes to Run.
type Agent struct {
	model    Completer
	tools    []Tool
	byName   map[string]Tool
	params   []openai.ChatCompletionToolParam
	maxTurns int
	logger   log.Logger
}

// New creates an agent over the given model and tool set. maxTurns
// bounds tool-calling iterations within one Run.
func New(model Completer, tools []Tool, maxTurns int, logger log.Logger) *Agent {
	if logger == nil {
		logger = log.NewNop()
	}
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Agent{
		model:    model,
		tools:    tools,
		byName:   byName,
		params:   Params(tools),
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// Run executes one turn over the given history: the model may request
// any number of tool calls (bounded by maxTurns) before producing a
// final assistant message.
//
// On success it returns the updated history, final message last, and
// the final text. On failure it returns the input history unchanged,
// with no partial assistant or tool messages recorded, together with
// the turn error. The caller decides whether to keep going.
func (a *Agent) Run(ctx context.Context, history History) (History, string, error) {
	working := append(History{}, history...)

	for turn := 0; turn < a.maxTurns; turn++ {
		message, err := a.model.Complete(ctx, working, a.params)
		if err != nil {
			return history, "", err
		}

		if len(message.ToolCalls) == 0 {
			working = append(working, message.ToParam())
			return working, message.Content, nil
		}

		// Record the assistant's tool-call turn, then one tool-result
		// message per call, in call order.
		working = append(working, message.ToParam())
		for _, call := range message.ToolCalls {
			output, err := a.invokeTool(ctx, call)
			if err != nil {
				return history, "", err
			}
			working = append(working, openai.ToolMessage(output, call.ID))
		}
	}

	return history, "", fmt.Errorf("%w (%d turns)", ErrMaxTurns, a.maxTurns)
}

func (a *Agent) invokeTool(ctx context.Context, call openai.ChatCompletionMessageToolCall) (string, error) {
	name := call.Function.Name
	tool, ok := a.byName[name]
	if !ok {
		return "", fmt.Errorf("model requested unknown tool %q", name)
	}

	a.logger.Debug("invoking tool", "tool", name)
	output, err := tool.Invoke(ctx, call.Function.Arguments)
	if err != nil {
		return "", err
	}
	a.logger.Debug("tool returned", "tool", name, "bytes", len(output))
	return output, nil
}
