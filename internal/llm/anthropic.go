package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	DefaultAnthropicModel   = "claude-sonnet-4-20250514"
	anthropicVersion        = "2023-06-01"

	// maxAnthropicResponseBytes caps a Messages API response body.
	maxAnthropicResponseBytes = 4 << 20
)

// AnthropicConfig configures the Anthropic Messages API client.
type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Anthropic calls the Messages API over plain HTTP.
type Anthropic struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewAnthropic creates an Anthropic client. Zero fields take defaults;
// MaxRetries 0 means a failed call is not retried.
func NewAnthropic(cfg AnthropicConfig) *Anthropic {
	a := &Anthropic{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: cfg.HTTPClient,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		logger:     cfg.Logger,
	}
	if a.baseURL == "" {
		a.baseURL = DefaultAnthropicBaseURL
	}
	if a.model == "" {
		a.model = DefaultAnthropicModel
	}
	if a.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		a.httpClient = &http.Client{Timeout: timeout}
	}
	if a.baseDelay == 0 {
		a.baseDelay = time.Second
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Tools     []Tool    `json:"tools,omitempty"`
	Messages  []Message `json:"messages"`
}

type anthropicResponse struct {
	Content    []ContentBlock  `json:"content"`
	StopReason string          `json:"stop_reason"`
	Error      *anthropicError `json:"error,omitempty"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// APIError is returned for non-2xx responses that are not retried.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// Complete implements Model.
func (a *Anthropic) Complete(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Tools:     req.Tools,
		Messages:  wireMessages(req.Messages),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if attempt > 0 {
			delay := a.baseDelay * time.Duration(1<<(attempt-1))
			a.logger.DebugContext(ctx, "retrying model call", "attempt", attempt, "delay", delay, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, retry, err := a.do(ctx, body)
		if err == nil {
			a.logger.DebugContext(ctx, "model call completed",
				"model", a.model, "stop_reason", resp.StopReason, "duration", time.Since(start))
			return resp, nil
		}
		if !retry || ctx.Err() != nil || a.maxRetries == 0 {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// do performs one HTTP round trip. retry reports whether the failure is transient.
func (a *Anthropic) do(ctx context.Context, body []byte) (resp *Response, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxAnthropicResponseBytes+1))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > maxAnthropicResponseBytes {
		return nil, false, fmt.Errorf("response exceeds %d bytes", maxAnthropicResponseBytes)
	}

	var parsed anthropicResponse
	jsonErr := json.Unmarshal(data, &parsed)

	if httpResp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if jsonErr == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		apiErr := &APIError{StatusCode: httpResp.StatusCode, Message: msg}
		transient := httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500
		return nil, transient, apiErr
	}
	if jsonErr != nil {
		return nil, false, fmt.Errorf("failed to parse response: %w", jsonErr)
	}
	if parsed.Error != nil {
		return nil, false, fmt.Errorf("API error: %s", parsed.Error.Message)
	}

	return &Response{Content: parsed.Content, StopReason: parsed.StopReason}, false, nil
}

// wireMessages fills fields the Messages API requires but the neutral
// types leave optional.
func wireMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		blocks := make([]ContentBlock, len(m.Content))
		for j, b := range m.Content {
			if b.Type == BlockToolUse && len(b.Input) == 0 {
				b.Input = json.RawMessage(`{}`)
			}
			blocks[j] = b
		}
		out[i] = Message{Role: m.Role, Content: blocks}
	}
	return out
}
