package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

// TestWorkflow_EditAndRevert walks a user through editing a static note,
// reading it back, and clearing the edit.
func TestWorkflow_EditAndRevert(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()
	path := filepath.Join(d.Catalog.Root(), "biology", "cell-biology.md")

	_, err := UpdateNote(ctx, d, UpdateNoteInput{
		UserID:   testUser,
		NoteID:   "cell-biology",
		FolderID: "biology",
		Title:    stringPtr("Cells, revised"),
		Content:  stringPtr("- [ ] label the organelles"),
	})
	require.NoError(t, err)

	read, err := ReadNote(ctx, d, ReadNoteInput{UserID: testUser, NoteID: "cell-biology", FolderID: "biology"})
	require.NoError(t, err)
	require.Equal(t, "Cells, revised", read.Note.Title)
	require.Equal(t, "- [ ] label the organelles", read.Note.Content)
	require.Equal(t, note.KindTasks, read.Note.Kind, "kind follows effective content")
	require.False(t, read.Note.IsCustom)

	// A second edit only touches the subtitle
	_, err = UpdateNote(ctx, d, UpdateNoteInput{UserID: testUser, NoteID: "cell-biology", FolderID: "biology", Subtitle: stringPtr("week 1")})
	require.NoError(t, err)

	read, err = ReadNote(ctx, d, ReadNoteInput{UserID: testUser, NoteID: "cell-biology", FolderID: "biology"})
	require.NoError(t, err)
	require.Equal(t, "Cells, revised", read.Note.Title)
	require.Equal(t, "week 1", read.Note.Subtitle)

	del, err := DeleteNote(ctx, d, DeleteNoteInput{UserID: testUser, NoteID: "cell-biology", FolderID: "biology"})
	require.NoError(t, err)
	require.True(t, del.Success)

	read, err = ReadNote(ctx, d, ReadNoteInput{UserID: testUser, NoteID: "cell-biology", FolderID: "biology"})
	require.NoError(t, err)
	require.Equal(t, "Cell Biology", read.Note.Title)
	require.Equal(t, cellBiology, read.Note.Content)
	require.Empty(t, read.Note.Subtitle)

	// The file on disk is never modified
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, cellBiology, string(data))
}

func TestWorkflow_CreateTwiceYieldsTwoNotes(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()
	in := CreateNoteInput{UserID: testUser, FolderID: "history", Title: "Same", Content: "Same"}

	first, err := CreateNote(ctx, d, in)
	require.NoError(t, err)
	second, err := CreateNote(ctx, d, in)
	require.NoError(t, err)
	require.NotEqual(t, first.Note.ID, second.Note.ID)

	list, err := ListNotes(ctx, d, ListNotesInput{UserID: testUser, FolderID: "history"})
	require.NoError(t, err)
	require.Equal(t, 3, list.Count)
	require.Equal(t, first.Note.ID, list.Notes[1].ID, "custom notes oldest first")
	require.Equal(t, second.Note.ID, list.Notes[2].ID)
}

func TestWorkflow_NewFolderAcceptsNotes(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	_, err := CreateNote(ctx, d, CreateNoteInput{UserID: testUser, FolderID: "physics", Title: "T", Content: "C"})
	require.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)

	folder, err := CreateFolder(ctx, d, CreateFolderInput{UserID: testUser, FolderID: "physics", Name: "Physics"})
	require.NoError(t, err)
	require.True(t, folder.Success)

	created, err := CreateNote(ctx, d, CreateNoteInput{UserID: testUser, FolderID: "physics", Title: "Newton", Content: "F = ma"})
	require.NoError(t, err)

	folders, err := ListFolders(ctx, d, ListFoldersInput{UserID: testUser})
	require.NoError(t, err)
	var physics *note.Folder
	for i := range folders.Folders {
		if folders.Folders[i].ID == "physics" {
			physics = &folders.Folders[i]
		}
	}
	require.NotNil(t, physics)
	require.Equal(t, "Physics", physics.Name)
	require.Equal(t, 1, physics.NoteCount)

	found, err := SearchNotes(ctx, d, SearchNotesInput{UserID: testUser, Query: "newton", FolderID: "physics"})
	require.NoError(t, err)
	require.Len(t, found.Results, 1)
	require.Equal(t, created.Note.ID, found.Results[0].NoteID)
	require.Equal(t, MatchTitle, found.Results[0].MatchType)
}

func TestWorkflow_StaticFileAddedAfterCatalogOpen(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	// Prime the cache
	_, err := ListNotes(ctx, d, ListNotesInput{UserID: testUser, FolderID: "biology"})
	require.NoError(t, err)

	writeNote(t, d.Catalog.Root(), "biology", "genetics", "# Genetics\n\nMendel.")
	d.Catalog.Invalidate("biology")

	list, err := ListNotes(ctx, d, ListNotesInput{UserID: testUser, FolderID: "biology"})
	require.NoError(t, err)
	require.Equal(t, 2, list.Count)
	require.Equal(t, "cell-biology", list.Notes[0].ID)
	require.Equal(t, "genetics", list.Notes[1].ID)
}
