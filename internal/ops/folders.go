package ops

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/hpungsan/orden/internal/catalog"
	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

// ListFoldersInput contains parameters for the ListFolders operation.
type ListFoldersInput struct {
	UserID string `json:"-"`
}

// Validate checks the input. list_folders takes no arguments.
func (in *ListFoldersInput) Validate() error { return nil }

// ListFoldersOutput contains the result of the ListFolders operation.
type ListFoldersOutput struct {
	Folders []note.Folder `json:"folders"`
}

// ListFolders returns declared folders first, then folders discovered on disk
// or created at runtime. Counts include the user's custom notes.
func ListFolders(ctx context.Context, d *Deps, input ListFoldersInput) (*ListFoldersOutput, error) {
	if err := requireUser(input.UserID); err != nil {
		return nil, err
	}

	ids, err := d.Catalog.FolderIDs()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	persisted, err := db.ListFolders(ctx, d.DB)
	if err != nil {
		return nil, err
	}
	customCounts, err := db.CountCustomNotes(ctx, d.DB, input.UserID)
	if err != nil {
		return nil, err
	}

	folders := make([]note.Folder, 0, len(ids))
	for _, id := range ids {
		f := note.Folder{ID: id, Name: catalog.DisplayName(id), Icon: catalog.DefaultIcon}
		if spec, ok := d.Catalog.Lookup(id); ok {
			f.Name, f.Icon = spec.Name, spec.Icon
		} else if p, ok := persisted[id]; ok {
			f.Name, f.Icon = p.Name, p.Icon
		}

		static, err := d.Catalog.Count(id)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		f.NoteCount = static + customCounts[id]
		folders = append(folders, f)
	}

	return &ListFoldersOutput{Folders: folders}, nil
}

// CreateFolderInput contains parameters for the CreateFolder operation.
type CreateFolderInput struct {
	UserID   string `json:"-"`
	FolderID string `json:"folderId"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
}

// Validate checks required fields and the folder id format.
func (in *CreateFolderInput) Validate() error {
	var err error
	if in.FolderID, err = required("folderId", in.FolderID); err != nil {
		return err
	}
	if !catalog.ValidFolderID(in.FolderID) {
		return errors.NewInvalidArguments("folderId must be lowercase letters, digits, '-' or '_'")
	}
	if in.Name, err = required("name", in.Name); err != nil {
		return err
	}
	return nil
}

// CreateFolderOutput contains the result of the CreateFolder operation.
type CreateFolderOutput struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Folder  *note.Folder `json:"folder,omitempty"`
}

// CreateFolder creates the folder directory and persists its display metadata.
// An existing directory is reported as an unsuccessful result, not an error.
func CreateFolder(ctx context.Context, d *Deps, input CreateFolderInput) (*CreateFolderOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.Icon == "" {
		input.Icon = catalog.DefaultIcon
	}

	err := d.Catalog.CreateFolder(input.FolderID)
	if stderrors.Is(err, catalog.ErrFolderExists) {
		return &CreateFolderOutput{
			Success: false,
			Message: fmt.Sprintf("Folder %q already exists", input.FolderID),
		}, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	f := note.Folder{ID: input.FolderID, Name: input.Name, Icon: input.Icon}
	if _, declared := d.Catalog.Lookup(f.ID); !declared {
		if err := db.InsertFolder(ctx, d.DB, f); err != nil && !errors.Is(err, errors.ErrAlreadyExists) {
			return nil, err
		}
	}

	d.Logger.InfoContext(ctx, "folder created", "folder", f.ID, "user", input.UserID)

	return &CreateFolderOutput{
		Success: true,
		Message: fmt.Sprintf("Folder %q (%s) created successfully", f.Name, f.ID),
		Folder:  &f,
	}, nil
}
