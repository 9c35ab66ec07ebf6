package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

func TestListFolders_ConfiguredFirst(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	// A discovered folder with no declaration
	if err := os.MkdirAll(filepath.Join(d.Catalog.Root(), "art"), 0755); err != nil {
		t.Fatal(err)
	}

	out, err := ListFolders(ctx, d, ListFoldersInput{UserID: testUser})
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}

	want := []note.Folder{
		{ID: "biology", Name: "Biology 101", Icon: "biotech", NoteCount: 1},
		{ID: "history", Name: "World History", Icon: "history_edu", NoteCount: 1},
		{ID: "art", Name: "Art", Icon: "folder", NoteCount: 0},
	}
	if len(out.Folders) != len(want) {
		t.Fatalf("Folders = %+v, want %d entries", out.Folders, len(want))
	}
	for i := range want {
		if out.Folders[i] != want[i] {
			t.Errorf("Folders[%d] = %+v, want %+v", i, out.Folders[i], want[i])
		}
	}
}

func TestListFolders_CountsIncludeCustomNotes(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	for range 2 {
		if _, err := CreateNote(ctx, d, CreateNoteInput{UserID: testUser, FolderID: "biology", Title: "T", Content: "C"}); err != nil {
			t.Fatal(err)
		}
	}
	// Another user's note does not count
	if _, err := CreateNote(ctx, d, CreateNoteInput{UserID: "someone-else", FolderID: "biology", Title: "T", Content: "C"}); err != nil {
		t.Fatal(err)
	}

	out, err := ListFolders(ctx, d, ListFoldersInput{UserID: testUser})
	if err != nil {
		t.Fatal(err)
	}
	if out.Folders[0].ID != "biology" || out.Folders[0].NoteCount != 3 {
		t.Errorf("biology = %+v, want NoteCount 3", out.Folders[0])
	}
}

func TestCreateFolder_PersistsMetadata(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	out, err := CreateFolder(ctx, d, CreateFolderInput{UserID: testUser, FolderID: "chemistry", Name: "Chemistry", Icon: "science"})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if !out.Success || out.Folder == nil {
		t.Fatalf("CreateFolder() = %+v", out)
	}
	if out.Message != `Folder "Chemistry" (chemistry) created successfully` {
		t.Errorf("Message = %q", out.Message)
	}

	if !d.Catalog.FolderExists("chemistry") {
		t.Error("folder directory not created")
	}
	f, err := db.GetFolder(ctx, d.DB, "chemistry")
	if err != nil {
		t.Fatalf("GetFolder() error = %v", err)
	}
	if f.Name != "Chemistry" || f.Icon != "science" {
		t.Errorf("persisted folder = %+v", f)
	}

	list, err := ListFolders(ctx, d, ListFoldersInput{UserID: testUser})
	if err != nil {
		t.Fatal(err)
	}
	last := list.Folders[len(list.Folders)-1]
	if last.ID != "chemistry" || last.Name != "Chemistry" || last.Icon != "science" {
		t.Errorf("listed folder = %+v, want persisted metadata", last)
	}
}

func TestCreateFolder_DefaultIcon(t *testing.T) {
	d := testDeps(t)

	out, err := CreateFolder(context.Background(), d, CreateFolderInput{UserID: testUser, FolderID: "music", Name: "Music"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Folder.Icon != "folder" {
		t.Errorf("Icon = %q, want folder", out.Folder.Icon)
	}
}

func TestCreateFolder_AlreadyExists(t *testing.T) {
	d := testDeps(t)

	out, err := CreateFolder(context.Background(), d, CreateFolderInput{UserID: testUser, FolderID: "biology", Name: "Bio"})
	if err != nil {
		t.Fatalf("CreateFolder() error = %v, want unsuccessful result", err)
	}
	if out.Success {
		t.Error("Success = true for existing folder")
	}
	if out.Message != `Folder "biology" already exists` {
		t.Errorf("Message = %q", out.Message)
	}
	if out.Folder != nil {
		t.Errorf("Folder = %+v, want nil", out.Folder)
	}
}

func TestCreateFolder_Validation(t *testing.T) {
	d := testDeps(t)

	tests := []struct {
		name  string
		input CreateFolderInput
	}{
		{"missing id", CreateFolderInput{Name: "X"}},
		{"missing name", CreateFolderInput{FolderID: "x"}},
		{"path traversal", CreateFolderInput{FolderID: "../x", Name: "X"}},
		{"uppercase", CreateFolderInput{FolderID: "Chem", Name: "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.UserID = testUser
			_, err := CreateFolder(context.Background(), d, tt.input)
			if !errors.Is(err, errors.ErrInvalidArguments) {
				t.Errorf("error = %v, want INVALID_ARGUMENTS", err)
			}
		})
	}
}
