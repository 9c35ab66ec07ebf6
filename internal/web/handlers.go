package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hpungsan/orden/internal/agent"
	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/ops"
	"github.com/hpungsan/orden/internal/tools"
)

// Handlers contains HTTP route handlers for the API.
type Handlers struct {
	agent       *agent.Service
	exec        *tools.Executor
	deps        *ops.Deps
	defaultUser string
	version     string
	logger      *slog.Logger
}

// user returns the calling user's id.
func (h *Handlers) user(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get(UserHeader)); u != "" {
		return u
	}
	return h.defaultUser
}

// HandleIndex handles GET / with the service name, version and agent status.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"name":    "orden",
		"version": h.version,
		"status":  h.agent.Status().Status,
	})
}

// HandleCommand handles POST /api/agent/command: run a natural-language command.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req agent.Request
	if err := decodeBody(w, r, &req); err != nil {
		renderError(w, err)
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		renderError(w, errors.NewInvalidArguments("Command is required"))
		return
	}
	req.UserID = h.user(r)

	renderJSON(w, http.StatusOK, h.agent.Handle(r.Context(), req))
}

// HandleStatus handles GET /api/agent/status.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.agent.Status())
}

// HandleListFolders handles GET /api/folders.
func (h *Handlers) HandleListFolders(w http.ResponseWriter, r *http.Request) {
	h.runTool(w, r, "list_folders", nil, http.StatusOK)
}

// HandleCreateFolder handles POST /api/folders. An existing folder is
// reported in the payload, not as an HTTP error.
func (h *Handlers) HandleCreateFolder(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if err := decodeBody(w, r, &args); err != nil {
		renderError(w, err)
		return
	}
	h.runTool(w, r, "create_folder", args, http.StatusOK)
}

// HandleListNotes handles GET /api/folders/{folderId}/notes.
func (h *Handlers) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	h.runTool(w, r, "list_notes", map[string]any{"folderId": r.PathValue("folderId")}, http.StatusOK)
}

// HandleCreateNote handles POST /api/folders/{folderId}/notes.
func (h *Handlers) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if err := decodeBody(w, r, &args); err != nil {
		renderError(w, err)
		return
	}
	args["folderId"] = r.PathValue("folderId")
	h.runTool(w, r, "create_note", args, http.StatusCreated)
}

// HandleSearch handles GET /api/search?q=...&folder=...
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{"query": r.URL.Query().Get("q")}
	if folder := r.URL.Query().Get("folder"); folder != "" {
		args["folderId"] = folder
	}
	h.runTool(w, r, "search_notes", args, http.StatusOK)
}

// HandleReadNote handles GET /api/notes/{folderId}/{noteId}. With
// ?format=html the note is rendered as a page.
func (h *Handlers) HandleReadNote(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{"folderId": r.PathValue("folderId"), "noteId": r.PathValue("noteId")}

	if r.URL.Query().Get("format") != "html" {
		h.runTool(w, r, "read_note", args, http.StatusOK)
		return
	}

	res := h.execute(r.Context(), "read_note", args, h.user(r))
	if res.IsError() {
		renderError(w, res.Err)
		return
	}
	out, ok := res.Payload.(*ops.ReadNoteOutput)
	if !ok {
		renderError(w, errors.NewInternal(nil))
		return
	}
	renderNote(w, h.logger, out.Note, h.version)
}

// HandleUpdateNote handles PUT /api/notes/{folderId}/{noteId}.
func (h *Handlers) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{}
	if err := decodeBody(w, r, &args); err != nil {
		renderError(w, err)
		return
	}
	args["folderId"] = r.PathValue("folderId")
	args["noteId"] = r.PathValue("noteId")
	h.runTool(w, r, "update_note", args, http.StatusOK)
}

// HandleDeleteNote handles DELETE /api/notes/{folderId}/{noteId}.
func (h *Handlers) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	args := map[string]any{"folderId": r.PathValue("folderId"), "noteId": r.PathValue("noteId")}
	h.runTool(w, r, "delete_note", args, http.StatusOK)
}

// HandleListEdits handles GET /api/notes/edits: the caller's overlays.
func (h *Handlers) HandleListEdits(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListEdits(r.Context(), h.deps, h.user(r))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleListCustom handles GET /api/notes/custom: the caller's custom notes.
func (h *Handlers) HandleListCustom(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ListCustomNotes(r.Context(), h.deps, h.user(r))
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// runTool executes a tool for the calling user and writes its outcome.
func (h *Handlers) runTool(w http.ResponseWriter, r *http.Request, name string, args map[string]any, status int) {
	res := h.execute(r.Context(), name, args, h.user(r))
	if res.IsError() {
		renderError(w, res.Err)
		return
	}
	renderJSON(w, status, res.Payload)
}

func (h *Handlers) execute(ctx context.Context, name string, args map[string]any, user string) tools.Result {
	raw, err := json.Marshal(args)
	if err != nil {
		return tools.Result{Err: errors.NewInvalidArguments(err.Error())}
	}
	return h.exec.Execute(ctx, name, raw, user)
}

// decodeBody reads a JSON request body into v. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.NewInvalidArguments("failed to read request body: " + err.Error())
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewInvalidArguments("invalid JSON body: " + err.Error())
	}
	return nil
}
