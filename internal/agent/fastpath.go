package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/orden/internal/ops"
	"github.com/hpungsan/orden/internal/tools"
)

var listNotesPattern = regexp.MustCompile(`^(?:list|show) notes in ([a-z0-9_-]+)$`)

// Match is a command recognized without the model.
type Match struct {
	Tool string
	Args map[string]string
}

// Parse recognizes the simple listing commands. Matching ignores case and
// surrounding whitespace.
func Parse(command string) (Match, bool) {
	c := strings.ToLower(strings.TrimSpace(command))

	if c == "list folders" || c == "show folders" {
		return Match{Tool: "list_folders", Args: map[string]string{}}, true
	}
	if m := listNotesPattern.FindStringSubmatch(c); m != nil {
		return Match{Tool: "list_notes", Args: map[string]string{"folderId": m[1]}}, true
	}
	return Match{}, false
}

// runQuick executes a recognized command directly and formats its payload.
func runQuick(ctx context.Context, exec *tools.Executor, m Match, userID string) Response {
	raw, err := json.Marshal(m.Args)
	if err != nil {
		return Response{Success: false, Message: "Failed to process command: " + err.Error()}
	}

	res := exec.Execute(ctx, m.Tool, raw, userID)
	if res.IsError() {
		return Response{Success: false, Message: res.Err.Message}
	}

	switch out := res.Payload.(type) {
	case *ops.ListFoldersOutput:
		return Response{Success: true, Message: formatFolders(out), Data: out}
	case *ops.ListNotesOutput:
		return Response{Success: true, Message: formatNotes(out), Data: out}
	default:
		return Response{Success: true, Message: "Command executed successfully.", Data: out}
	}
}

func formatFolders(out *ops.ListFoldersOutput) string {
	var b strings.Builder
	b.WriteString("Available folders:")
	for _, f := range out.Folders {
		fmt.Fprintf(&b, "\n- %s (%s): %d notes", f.Name, f.ID, f.NoteCount)
	}
	return b.String()
}

func formatNotes(out *ops.ListNotesOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Notes found (%d):", out.Count)
	for _, n := range out.Notes {
		fmt.Fprintf(&b, "\n- %s (%s): %s", n.Title, n.ID, n.Kind)
	}
	return b.String()
}
