// Package mcp exposes the notes tools to external MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/orden/internal/tools"
)

// NewServer creates an MCP server with the executor's enabled tools
// registered. Every call runs on behalf of user.
func NewServer(exec *tools.Executor, user, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"orden",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(exec, user)
	for _, def := range exec.Registry().Definitions() {
		s.AddTool(def, h.Handler(def.Name))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(exec *tools.Executor, user, version string) error {
	s := NewServer(exec, user, version)
	return server.ServeStdio(s)
}
