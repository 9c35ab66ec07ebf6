package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// noteTypes are the accepted values of create_note's type argument.
var noteTypes = []string{"summary", "slides", "article", "tasks", "audio"}

var listFoldersDef = mcp.NewTool("list_folders",
	mcp.WithDescription("List all note folders with their display names, icons and note counts."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
)

var listNotesDef = mcp.NewTool("list_notes",
	mcp.WithDescription("List the notes in a folder, including the user's custom notes."),
	mcp.WithString("folderId", mcp.Required(), mcp.Description("Folder id, e.g. \"biology\"")),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
)

var searchNotesDef = mcp.NewTool("search_notes",
	mcp.WithDescription("Search note titles and content for a case-insensitive substring. "+
		"Title matches are reported before content matches. Always search before creating a note."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
	mcp.WithString("folderId", mcp.Description("Restrict the search to one folder. "+
		"When omitted, every folder is searched: the configured ones and any found in the data directory, "+
		"plus the user's custom notes.")),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
)

var readNoteDef = mcp.NewTool("read_note",
	mcp.WithDescription("Read the full content of a note, with the user's edits applied."),
	mcp.WithString("noteId", mcp.Required(), mcp.Description("Note id")),
	mcp.WithString("folderId", mcp.Required(), mcp.Description("Folder containing the note")),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
)

var createNoteDef = mcp.NewTool("create_note",
	mcp.WithDescription("Create a new note in a folder. Every call creates a new note, so check "+
		"with search_notes first that an equivalent note does not already exist."),
	mcp.WithString("folderId", mcp.Required(), mcp.Description("Folder to create the note in")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content")),
	mcp.WithString("type", mcp.Enum(noteTypes...), mcp.Description("Presentation type (default: summary)")),
	mcp.WithString("subtitle", mcp.Description("Short subtitle shown in listings")),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
)

var updateNoteDef = mcp.NewTool("update_note",
	mcp.WithDescription("Update a note's title, content or subtitle. Only supplied fields change. "+
		"When adding to a note, read it first and send the full new content."),
	mcp.WithString("noteId", mcp.Required(), mcp.Description("Note id")),
	mcp.WithString("folderId", mcp.Required(), mcp.Description("Folder containing the note")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("content", mcp.Description("New markdown content")),
	mcp.WithString("subtitle", mcp.Description("New subtitle")),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)

var deleteNoteDef = mcp.NewTool("delete_note",
	mcp.WithDescription("Delete a custom note. For built-in notes only the user's edits are removed."),
	mcp.WithString("noteId", mcp.Required(), mcp.Description("Note id")),
	mcp.WithString("folderId", mcp.Required(), mcp.Description("Folder containing the note")),
	mcp.WithIdempotentHintAnnotation(true),
	mcp.WithOpenWorldHintAnnotation(false),
)

var createFolderDef = mcp.NewTool("create_folder",
	mcp.WithDescription("Create a new folder for notes."),
	mcp.WithString("folderId", mcp.Required(), mcp.Description("Folder id: lowercase letters, digits, '-' or '_'")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
	mcp.WithString("icon", mcp.Description("Icon tag (default: folder)")),
	mcp.WithDestructiveHintAnnotation(false),
	mcp.WithOpenWorldHintAnnotation(false),
)

var webSearchDef = mcp.NewTool("web_search",
	mcp.WithDescription("Look up a topic on the web and return short instant-answer results. "+
		"Cite the returned URLs when using them in notes."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Search query")),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithDestructiveHintAnnotation(false),
)
