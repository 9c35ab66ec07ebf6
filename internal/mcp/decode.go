package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// rawArguments re-encodes MCP request arguments so the executor can decode
// them into its typed inputs. Missing arguments become an empty object.
func rawArguments(req mcp.CallToolRequest) (json.RawMessage, error) {
	b, err := json.Marshal(req.GetRawArguments())
	if err != nil {
		return nil, fmt.Errorf("marshal args: %w", err)
	}
	if string(b) == "null" {
		return json.RawMessage(`{}`), nil
	}
	return b, nil
}
