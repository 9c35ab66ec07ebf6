// Package agent turns natural-language commands into tool calls against the
// notes stores, either directly for simple listings or through the model loop.
package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hpungsan/orden/internal/llm"
	"github.com/hpungsan/orden/internal/tools"
)

// HistoryMessage is a prior conversation turn supplied by the caller.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one agent command.
type Request struct {
	Command string           `json:"command"`
	UserID  string           `json:"userId,omitempty"`
	History []HistoryMessage `json:"conversationHistory,omitempty"`
}

// Response is the outcome of a command. Actions lists every tool invocation
// in execution order.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Actions []string `json:"actions,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// Agent status values reported by Status.
const (
	StatusReady         = "ready"
	StatusNotConfigured = "not_configured"
)

// Status describes whether commands that need the model can run.
type Status struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Tools   []string `json:"tools"`
}

// Service routes commands to the fast path or the model loop.
type Service struct {
	model    llm.Model
	executor *tools.Executor
	loop     *Loop
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(model llm.Model, executor *tools.Executor, cfg LoopConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		model:    model,
		executor: executor,
		loop:     NewLoop(model, executor, cfg),
		logger:   cfg.Logger,
	}
}

// Handle processes one command. Simple listings bypass the model entirely.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	if strings.TrimSpace(req.Command) == "" {
		return Response{Success: false, Message: "Command is required"}
	}

	if m, ok := Parse(req.Command); ok {
		s.logger.DebugContext(ctx, "fast path", "tool", m.Tool, "user", req.UserID)
		return runQuick(ctx, s.executor, m, req.UserID)
	}
	return s.loop.Process(ctx, req.Command, req.UserID, req.History)
}

// Status reports whether the model is reachable with the configured credential.
func (s *Service) Status() Status {
	st := Status{Tools: s.executor.Registry().Names()}
	if llm.IsConfigured(s.model) {
		st.Status = StatusReady
		st.Message = "Notes agent is ready to process commands"
		return st
	}
	st.Status = StatusNotConfigured
	st.Message = "No model credential is configured"
	if u, ok := s.model.(llm.Unconfigured); ok && u.EnvVar != "" {
		st.Message = u.EnvVar + " is not configured"
	}
	return st
}
