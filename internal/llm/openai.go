package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultOpenAIModel is used when no model is configured for the openai provider.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIConfig configures the chat-completions client.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // OpenAI-compatible gateways; empty uses the SDK default
	Model      string
	Timeout    time.Duration
	MaxRetries int // 0 disables the SDK's retries
	HTTPClient *http.Client
}

// OpenAI adapts an OpenAI-compatible chat-completions endpoint to Model.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates an OpenAI client.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	opts = append(opts, option.WithMaxRetries(max(cfg.MaxRetries, 0)))
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "claude") {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClient(opts...), model: model}
}

// Complete implements Model.
func (o *OpenAI) Complete(ctx context.Context, req *Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: toOpenAIMessages(req.System, req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.InputSchema),
			},
		})
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	choice := completion.Choices[0]
	resp := &Response{StopReason: stopReason(choice.FinishReason)}
	if choice.Message.Content != "" {
		resp.Content = append(resp.Content, TextBlock(choice.Message.Content))
	}
	for _, call := range choice.Message.ToolCalls {
		resp.Content = append(resp.Content, ToolUseBlock(call.ID, call.Function.Name, rawArguments(call.Function.Arguments)))
	}
	return resp, nil
}

// toOpenAIMessages flattens block-structured turns into chat messages. Tool
// results become tool messages and precede any user text of the same turn.
func toOpenAIMessages(system string, msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	for _, m := range msgs {
		var text strings.Builder
		switch m.Role {
		case RoleAssistant:
			var assistant openai.ChatCompletionAssistantMessageParam
			for _, b := range m.Content {
				switch b.Type {
				case BlockText:
					text.WriteString(b.Text)
				case BlockToolUse:
					args := string(b.Input)
					if args == "" {
						args = "{}"
					}
					assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
						ID: b.ID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      b.Name,
							Arguments: args,
						},
					})
				}
			}
			if text.Len() > 0 {
				assistant.Content.OfString = openai.String(text.String())
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		default:
			for _, b := range m.Content {
				switch b.Type {
				case BlockToolResult:
					out = append(out, openai.ToolMessage(b.Content, b.ToolUseID))
				case BlockText:
					text.WriteString(b.Text)
				}
			}
			if text.Len() > 0 {
				out = append(out, openai.UserMessage(text.String()))
			}
		}
	}
	return out
}

// rawArguments returns args as a JSON value. Arguments that are not valid
// JSON are passed on as a JSON string so decoding fails downstream.
func rawArguments(args string) json.RawMessage {
	if strings.TrimSpace(args) == "" {
		return json.RawMessage(`{}`)
	}
	if json.Valid([]byte(args)) {
		return json.RawMessage(args)
	}
	quoted, _ := json.Marshal(args)
	return quoted
}

func stopReason(finish string) string {
	switch finish {
	case "tool_calls", "function_call":
		return StopToolUse
	case "length":
		return StopMaxTokens
	default:
		return StopEndTurn
	}
}
