package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/llm"
	"github.com/hpungsan/orden/internal/tools"
)

const (
	DefaultMaxRounds = 10
	DefaultMaxTokens = 4096

	// fallbackMessage is reported when the model finishes without any text.
	fallbackMessage = "Command processed successfully."
)

// LoopConfig bounds a Loop. Zero values take the defaults.
type LoopConfig struct {
	MaxRounds int
	MaxTokens int
	Logger    *slog.Logger
}

// Loop drives a bounded conversation between the model and the tool executor.
type Loop struct {
	model     llm.Model
	executor  *tools.Executor
	tools     []llm.Tool
	maxRounds int
	maxTokens int
	logger    *slog.Logger
}

// NewLoop creates a Loop advertising the executor's enabled tools.
func NewLoop(model llm.Model, executor *tools.Executor, cfg LoopConfig) *Loop {
	l := &Loop{
		model:     model,
		executor:  executor,
		tools:     toolSchemas(executor.Registry().Definitions()),
		maxRounds: cfg.MaxRounds,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
	if l.maxRounds <= 0 {
		l.maxRounds = DefaultMaxRounds
	}
	if l.maxTokens <= 0 {
		l.maxTokens = DefaultMaxTokens
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Process runs command for userID on top of the prior conversation. It never
// returns an error; turn-level failures are reported with Success false.
func (l *Loop) Process(ctx context.Context, command, userID string, history []HistoryMessage) (resp Response) {
	var actions []string
	defer func() {
		if r := recover(); r != nil {
			l.logger.ErrorContext(ctx, "agent loop panicked", "panic", r, "stack", string(debug.Stack()))
			resp = failure(fmt.Errorf("internal error: %v", r), actions)
		}
	}()

	messages := seed(history, command)
	var texts []string

	for round := 1; round <= l.maxRounds; round++ {
		out, err := l.model.Complete(ctx, &llm.Request{
			System:    systemPrompt,
			Tools:     l.tools,
			Messages:  messages,
			MaxTokens: l.maxTokens,
		})
		if err != nil {
			l.logger.WarnContext(ctx, "model call failed", "round", round, "err", err)
			return failure(err, actions)
		}

		text := out.Text()
		uses := out.ToolUses()
		if len(uses) == 0 {
			l.logger.DebugContext(ctx, "agent finished", "rounds", round, "actions", len(actions))
			return Response{Success: true, Message: finalMessage(text), Actions: actions}
		}
		if text != "" {
			texts = append(texts, text)
		}

		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: out.Content})

		results := make([]llm.ContentBlock, 0, len(uses))
		for _, use := range uses {
			actions = append(actions, action(use.Name, use.Input))
			res := l.executor.Execute(ctx, use.Name, use.Input, userID)
			results = append(results, llm.ToolResultBlock(use.ID, res.JSON(), res.IsError()))
		}
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: results})
	}

	l.logger.WarnContext(ctx, "agent hit round limit", "rounds", l.maxRounds, "actions", len(actions))
	return Response{Success: true, Message: finalMessage(strings.Join(texts, "\n\n")), Actions: actions}
}

// seed converts prior turns into model messages and appends the command.
// Turns with an unknown role or no content are dropped.
func seed(history []HistoryMessage, command string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	for _, h := range history {
		if strings.TrimSpace(h.Content) == "" {
			continue
		}
		switch llm.Role(h.Role) {
		case llm.RoleUser:
			messages = append(messages, llm.UserText(h.Content))
		case llm.RoleAssistant:
			messages = append(messages, llm.AssistantText(h.Content))
		}
	}
	return append(messages, llm.UserText(command))
}

// action renders an invocation as "<tool>: <compact json args>".
func action(name string, input json.RawMessage) string {
	args := []byte("{}")
	if len(bytes.TrimSpace(input)) > 0 {
		var buf bytes.Buffer
		if err := json.Compact(&buf, input); err == nil {
			args = buf.Bytes()
		} else {
			args = input
		}
	}
	return name + ": " + string(args)
}

func finalMessage(text string) string {
	if strings.TrimSpace(text) == "" {
		return fallbackMessage
	}
	return text
}

// failure maps a turn-level error onto the response shown to the user.
func failure(err error, actions []string) Response {
	if errors.Is(err, errors.ErrNotConfigured) {
		return Response{Success: false, Message: err.(*errors.OrdenError).Message, Actions: actions}
	}
	return Response{
		Success: false,
		Message: "Failed to process command: " + err.Error(),
		Actions: actions,
	}
}

// toolSchemas converts MCP tool definitions into model tool descriptions.
func toolSchemas(defs []mcp.Tool) []llm.Tool {
	out := make([]llm.Tool, len(defs))
	for i, d := range defs {
		props := d.InputSchema.Properties
		if props == nil {
			props = map[string]any{}
		}
		schema := map[string]any{
			"type":       "object",
			"properties": props,
		}
		if len(d.InputSchema.Required) > 0 {
			schema["required"] = d.InputSchema.Required
		}
		out[i] = llm.Tool{Name: d.Name, Description: d.Description, InputSchema: schema}
	}
	return out
}
