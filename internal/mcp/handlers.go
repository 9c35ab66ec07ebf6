package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/tools"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	exec *tools.Executor
	user string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(exec *tools.Executor, user string) *Handlers {
	return &Handlers{exec: exec, user: user}
}

// Handler returns the MCP handler for the named tool.
func (h *Handlers) Handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := rawArguments(req)
		if err != nil {
			return errorResult(errors.NewInvalidArguments(err.Error())), nil
		}

		res := h.exec.Execute(ctx, name, raw, h.user)
		if res.IsError() {
			return errorResult(res.Err), nil
		}
		return successResult(res.Payload)
	}
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(tools.ErrorPayload(err))}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
