package ops

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

// DateLayout formats the display date of custom notes ("Jan 2").
const DateLayout = "Jan 2"

// ListNotesInput contains parameters for the ListNotes operation.
type ListNotesInput struct {
	UserID   string `json:"-"`
	FolderID string `json:"folderId"`
}

// Validate checks required fields.
func (in *ListNotesInput) Validate() error {
	var err error
	in.FolderID, err = required("folderId", in.FolderID)
	return err
}

// ListNotesOutput contains the result of the ListNotes operation.
type ListNotesOutput struct {
	Notes []note.Summary `json:"notes"`
	Count int            `json:"count"`
}

// ListNotes returns the folder's static notes with the user's overlays applied,
// followed by the user's custom notes in that folder, oldest first.
func ListNotes(ctx context.Context, d *Deps, input ListNotesInput) (*ListNotesOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := requireUser(input.UserID); err != nil {
		return nil, err
	}

	statics, err := d.Catalog.Notes(input.FolderID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	summaries := make([]note.Summary, 0, len(statics))
	for _, s := range statics {
		n, err := d.Merger.Merge(ctx, input.UserID, s)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, note.Summarize(n))
	}

	customs, err := db.ListCustomNotes(ctx, d.DB, input.UserID, input.FolderID)
	if err != nil {
		return nil, err
	}
	for i := range customs {
		summaries = append(summaries, note.Summarize(note.FromCustom(&customs[i])))
	}

	return &ListNotesOutput{Notes: summaries, Count: len(summaries)}, nil
}

// ReadNoteInput contains parameters for the ReadNote operation.
type ReadNoteInput struct {
	UserID   string `json:"-"`
	NoteID   string `json:"noteId"`
	FolderID string `json:"folderId"`
}

// Validate checks required fields.
func (in *ReadNoteInput) Validate() error {
	var err error
	if in.NoteID, err = required("noteId", in.NoteID); err != nil {
		return err
	}
	in.FolderID, err = required("folderId", in.FolderID)
	return err
}

// ReadNoteOutput contains the result of the ReadNote operation.
type ReadNoteOutput struct {
	Note note.Note `json:"note"`
}

// ReadNote returns the effective note. Custom notes are resolved first.
func ReadNote(ctx context.Context, d *Deps, input ReadNoteInput) (*ReadNoteOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := requireUser(input.UserID); err != nil {
		return nil, err
	}

	custom, err := findCustom(ctx, d, input.UserID, input.NoteID)
	if err != nil {
		return nil, err
	}
	if custom != nil {
		return &ReadNoteOutput{Note: note.FromCustom(custom)}, nil
	}

	s, ok, err := d.Catalog.Note(input.FolderID, input.NoteID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewNotFound("note", input.NoteID)
	}

	n, err := d.Merger.Merge(ctx, input.UserID, s)
	if err != nil {
		return nil, err
	}
	return &ReadNoteOutput{Note: n}, nil
}

// CreateNoteInput contains parameters for the CreateNote operation.
type CreateNoteInput struct {
	UserID   string `json:"-"`
	FolderID string `json:"folderId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Type     string `json:"type,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Validate checks required fields and the note type.
func (in *CreateNoteInput) Validate() error {
	var err error
	if in.FolderID, err = required("folderId", in.FolderID); err != nil {
		return err
	}
	if in.Title, err = required("title", in.Title); err != nil {
		return err
	}
	if in.Content == "" {
		return errors.NewInvalidArguments("content is required")
	}
	if _, ok := note.ParseKind(in.Type); !ok {
		return errors.NewInvalidArguments(fmt.Sprintf("type must be one of %v", note.Kinds))
	}
	return nil
}

// CreateNoteOutput contains the result of the CreateNote operation.
type CreateNoteOutput struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Note    note.Note `json:"note"`
}

// CreateNote always stores a new custom note; it never deduplicates.
func CreateNote(ctx context.Context, d *Deps, input CreateNoteInput) (*CreateNoteOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := requireUser(input.UserID); err != nil {
		return nil, err
	}

	known, err := folderKnown(ctx, d, input.FolderID)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, errors.NewNotFound("folder", input.FolderID)
	}

	kind, _ := note.ParseKind(input.Type)
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	c := &note.CustomNote{
		ID:        id.String(),
		UserID:    input.UserID,
		FolderID:  input.FolderID,
		Kind:      kind,
		Title:     input.Title,
		Subtitle:  input.Subtitle,
		Content:   input.Content,
		Date:      now.Format(DateLayout),
		CreatedAt: now.Unix(),
	}
	if err := db.InsertCustomNote(ctx, d.DB, c); err != nil {
		return nil, err
	}

	d.Logger.InfoContext(ctx, "note created", "note", c.ID, "folder", c.FolderID, "user", c.UserID)

	return &CreateNoteOutput{
		Success: true,
		Message: fmt.Sprintf("Note %q created successfully in folder %q", c.Title, c.FolderID),
		Note:    note.FromCustom(c),
	}, nil
}

// UpdateNoteInput contains parameters for the UpdateNote operation.
type UpdateNoteInput struct {
	UserID   string `json:"-"`
	NoteID   string `json:"noteId"`
	FolderID string `json:"folderId"`

	// Editable fields (nil = don't change)
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
}

// Validate checks required fields and that at least one field is edited.
func (in *UpdateNoteInput) Validate() error {
	var err error
	if in.NoteID, err = required("noteId", in.NoteID); err != nil {
		return err
	}
	if in.FolderID, err = required("folderId", in.FolderID); err != nil {
		return err
	}
	if in.Title == nil && in.Content == nil && in.Subtitle == nil {
		return errors.NewInvalidArguments("at least one of title, content or subtitle must be provided")
	}
	return nil
}

// UpdateNote patches a custom note in place, or writes the user's overlay for
// a static note. Only supplied fields change.
func UpdateNote(ctx context.Context, d *Deps, input UpdateNoteInput) (*MutationOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := requireUser(input.UserID); err != nil {
		return nil, err
	}

	custom, err := findCustom(ctx, d, input.UserID, input.NoteID)
	if err != nil {
		return nil, err
	}
	if custom != nil {
		patch := db.CustomNotePatch{Title: input.Title, Content: input.Content, Subtitle: input.Subtitle}
		if err := db.UpdateCustomNote(ctx, d.DB, input.UserID, input.NoteID, patch); err != nil {
			return nil, err
		}
		return &MutationOutput{
			Success: true,
			Message: fmt.Sprintf("Custom note %q updated successfully", input.NoteID),
		}, nil
	}

	_, ok, err := d.Catalog.Note(input.FolderID, input.NoteID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewNotFound("note", input.NoteID)
	}

	err = d.Merger.SaveEdit(ctx, note.EditPatch{
		UserID:   input.UserID,
		NoteID:   input.NoteID,
		FolderID: input.FolderID,
		Title:    input.Title,
		Content:  input.Content,
		Subtitle: input.Subtitle,
	})
	if err != nil {
		return nil, err
	}

	return &MutationOutput{
		Success: true,
		Message: fmt.Sprintf("Note %q updated successfully", input.NoteID),
	}, nil
}

// DeleteNoteInput contains parameters for the DeleteNote operation.
type DeleteNoteInput struct {
	UserID   string `json:"-"`
	NoteID   string `json:"noteId"`
	FolderID string `json:"folderId"`
}

// Validate checks required fields.
func (in *DeleteNoteInput) Validate() error {
	var err error
	if in.NoteID, err = required("noteId", in.NoteID); err != nil {
		return err
	}
	in.FolderID, err = required("folderId", in.FolderID)
	return err
}

// DeleteNote removes a custom note. For a static note only the user's overlay
// is removed; the file on disk is never touched.
func DeleteNote(ctx context.Context, d *Deps, input DeleteNoteInput) (*MutationOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := requireUser(input.UserID); err != nil {
		return nil, err
	}

	deleted, err := db.DeleteCustomNote(ctx, d.DB, input.UserID, input.NoteID)
	if err != nil {
		return nil, err
	}
	if deleted {
		d.Logger.InfoContext(ctx, "note deleted", "note", input.NoteID, "user", input.UserID)
		return &MutationOutput{
			Success: true,
			Message: fmt.Sprintf("Custom note %q deleted successfully", input.NoteID),
		}, nil
	}

	_, isStatic, err := d.Catalog.Note(input.FolderID, input.NoteID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	cleared, err := d.Merger.ClearEdit(ctx, input.UserID, input.NoteID)
	if err != nil {
		return nil, err
	}
	if !isStatic && !cleared {
		return nil, errors.NewNotFound("note", input.NoteID)
	}

	return &MutationOutput{
		Success: true,
		Message: fmt.Sprintf("Note edits for %q cleared. Static notes cannot be fully deleted.", input.NoteID),
	}, nil
}
