// Package tools is the fixed catalog of notes tools shared by the agent loop,
// the MCP server and the CLI.
package tools

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/orden/internal/ops"
)

// handler decodes raw arguments and runs one operation for userID.
type handler func(ctx context.Context, d *ops.Deps, raw json.RawMessage, userID string) (any, error)

// toolEntry pairs a tool definition with its handler.
type toolEntry struct {
	def    mcp.Tool
	handle handler
}

// toolOrder is the order tools are advertised in.
var toolOrder = []string{
	"list_folders",
	"list_notes",
	"search_notes",
	"read_note",
	"create_note",
	"update_note",
	"delete_note",
	"create_folder",
	"web_search",
}

// toolRegistry maps tool names to their definitions and handlers.
var toolRegistry = map[string]toolEntry{
	"list_folders": {
		def:    listFoldersDef,
		handle: bind(ops.ListFolders, func(in *ops.ListFoldersInput, u string) { in.UserID = u }),
	},
	"list_notes": {
		def:    listNotesDef,
		handle: bind(ops.ListNotes, func(in *ops.ListNotesInput, u string) { in.UserID = u }),
	},
	"search_notes": {
		def:    searchNotesDef,
		handle: bind(ops.SearchNotes, func(in *ops.SearchNotesInput, u string) { in.UserID = u }),
	},
	"read_note": {
		def:    readNoteDef,
		handle: bind(ops.ReadNote, func(in *ops.ReadNoteInput, u string) { in.UserID = u }),
	},
	"create_note": {
		def:    createNoteDef,
		handle: bind(ops.CreateNote, func(in *ops.CreateNoteInput, u string) { in.UserID = u }),
	},
	"update_note": {
		def:    updateNoteDef,
		handle: bind(ops.UpdateNote, func(in *ops.UpdateNoteInput, u string) { in.UserID = u }),
	},
	"delete_note": {
		def:    deleteNoteDef,
		handle: bind(ops.DeleteNote, func(in *ops.DeleteNoteInput, u string) { in.UserID = u }),
	},
	"create_folder": {
		def:    createFolderDef,
		handle: bind(ops.CreateFolder, func(in *ops.CreateFolderInput, u string) { in.UserID = u }),
	},
	"web_search": {
		def:    webSearchDef,
		handle: bind(ops.WebSearch, nil),
	},
}

// AllToolNames returns every tool name in advertised order.
func AllToolNames() []string {
	return slices.Clone(toolOrder)
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// Registry is the set of enabled tools.
type Registry struct {
	names []string
}

// NewRegistry returns a registry with every tool except those in disabled.
// Unknown names in disabled are ignored.
func NewRegistry(disabled []string) *Registry {
	names := make([]string, 0, len(toolOrder))
	for _, name := range toolOrder {
		if !slices.Contains(disabled, name) {
			names = append(names, name)
		}
	}
	return &Registry{names: names}
}

// Names returns the enabled tool names in advertised order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Has reports whether name is an enabled tool.
func (r *Registry) Has(name string) bool {
	return slices.Contains(r.names, name)
}

// Definitions returns the enabled tool definitions in advertised order.
func (r *Registry) Definitions() []mcp.Tool {
	defs := make([]mcp.Tool, len(r.names))
	for i, name := range r.names {
		defs[i] = toolRegistry[name].def
	}
	return defs
}

// lookup returns the handler for an enabled tool.
func (r *Registry) lookup(name string) (handler, bool) {
	if !r.Has(name) {
		return nil, false
	}
	return toolRegistry[name].handle, true
}

// validator is implemented by every operation input.
type validator interface {
	Validate() error
}

// bind adapts a typed operation to a handler. The raw arguments are decoded
// into In, stamped with the calling user, and validated before op runs.
func bind[In any, Out any](op func(context.Context, *ops.Deps, In) (*Out, error), withUser func(*In, string)) handler {
	return func(ctx context.Context, d *ops.Deps, raw json.RawMessage, userID string) (any, error) {
		in, err := decode[In](raw)
		if err != nil {
			return nil, err
		}
		if withUser != nil {
			withUser(&in, userID)
		}
		if v, ok := any(&in).(validator); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		out, err := op(ctx, d, in)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}
