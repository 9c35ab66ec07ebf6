package ops

import (
	"context"

	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/note"
)

// EditView is the external form of a stored overlay.
type EditView struct {
	NoteID    string  `json:"noteId"`
	FolderID  string  `json:"folderId"`
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	Subtitle  *string `json:"subtitle,omitempty"`
	UpdatedAt int64   `json:"updatedAt"`
}

// ListEditsOutput contains the result of the ListEdits operation.
type ListEditsOutput struct {
	Edits []EditView `json:"edits"`
	Count int        `json:"count"`
}

// ListEdits returns every overlay the user has written, most recent first.
func ListEdits(ctx context.Context, d *Deps, userID string) (*ListEditsOutput, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	edits, err := db.ListEdits(ctx, d.DB, userID)
	if err != nil {
		return nil, err
	}
	views := make([]EditView, len(edits))
	for i, e := range edits {
		views[i] = EditView{
			NoteID:    e.NoteID,
			FolderID:  e.FolderID,
			Title:     e.Title,
			Content:   e.Content,
			Subtitle:  e.Subtitle,
			UpdatedAt: e.UpdatedAt,
		}
	}
	return &ListEditsOutput{Edits: views, Count: len(views)}, nil
}

// ListCustomNotesOutput contains the result of the ListCustomNotes operation.
type ListCustomNotesOutput struct {
	Notes []note.Note `json:"notes"`
	Count int         `json:"count"`
}

// ListCustomNotes returns the user's custom notes across all folders, oldest first.
func ListCustomNotes(ctx context.Context, d *Deps, userID string) (*ListCustomNotesOutput, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	customs, err := db.ListCustomNotes(ctx, d.DB, userID, "")
	if err != nil {
		return nil, err
	}
	notes := make([]note.Note, len(customs))
	for i := range customs {
		notes[i] = note.FromCustom(&customs[i])
	}
	return &ListCustomNotesOutput{Notes: notes, Count: len(notes)}, nil
}
