// Package llm holds provider-neutral conversation types and the reasoning
// model backends that understand them.
package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hpungsan/orden/internal/config"
	"github.com/hpungsan/orden/internal/errors"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType identifies the kind of a content block.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// Stop reasons reported by Response.StopReason.
const (
	StopEndTurn   = "end_turn"
	StopToolUse   = "tool_use"
	StopMaxTokens = "max_tokens"
)

// ContentBlock is one element of a message. Which fields are set depends on Type:
// text carries Text; tool_use carries ID, Name and Input; tool_result carries
// ToolUseID, Content and IsError.
type ContentBlock struct {
	Type      BlockType       `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// TextBlock returns a text block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ToolUseBlock returns a tool invocation block.
func ToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ID: id, Name: name, Input: input}
}

// ToolResultBlock returns the outcome of the invocation with id toolUseID.
func ToolResultBlock(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content, IsError: isError}
}

// Message is one conversation turn.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// UserText returns a user turn holding a single text block.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// AssistantText returns an assistant turn holding a single text block.
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentBlock{TextBlock(text)}}
}

// Tool describes a callable tool to the model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// Request is one model call.
type Request struct {
	System    string
	Tools     []Tool
	Messages  []Message
	MaxTokens int
}

// Response is the model's reply.
type Response struct {
	Content    []ContentBlock
	StopReason string
}

// Text returns the concatenated text blocks of the response.
func (r *Response) Text() string {
	var b strings.Builder
	for _, c := range r.Content {
		if c.Type == BlockText {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// ToolUses returns the tool invocation blocks in request order.
func (r *Response) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, c := range r.Content {
		if c.Type == BlockToolUse {
			uses = append(uses, c)
		}
	}
	return uses
}

// Model is a reasoning model that can request tool calls.
type Model interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Unconfigured is the Model used when no credential is available. Every call
// fails with a NOT_CONFIGURED error naming the missing environment variable.
type Unconfigured struct {
	EnvVar string
}

// Complete implements Model.
func (u Unconfigured) Complete(context.Context, *Request) (*Response, error) {
	return nil, errors.NewNotConfigured(u.EnvVar)
}

// IsConfigured reports whether m can reach a provider.
func IsConfigured(m Model) bool {
	_, unconfigured := m.(Unconfigured)
	return m != nil && !unconfigured
}

// Option configures a provider built by New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
}

// WithHTTPClient replaces the HTTP client used by the provider.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the provider logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAPIKey overrides the credential read from the environment.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// New builds the provider selected by cfg.Provider. Without a credential it
// returns an Unconfigured model.
func New(cfg *config.Config, opts ...Option) Model {
	o := options{apiKey: cfg.APIKey()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.apiKey == "" {
		return Unconfigured{EnvVar: cfg.APIKeyEnv()}
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(OpenAIConfig{
			APIKey:     o.apiKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.ModelTimeout(),
			MaxRetries: cfg.ModelMaxRetries,
			HTTPClient: o.httpClient,
		})
	default:
		return NewAnthropic(AnthropicConfig{
			APIKey:     o.apiKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Timeout:    cfg.ModelTimeout(),
			MaxRetries: cfg.ModelMaxRetries,
			HTTPClient: o.httpClient,
			Logger:     o.logger,
		})
	}
}
