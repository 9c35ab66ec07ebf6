package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

// InsertFolder persists display metadata for a folder created at runtime.
// NoteCount is derived and not stored.
func InsertFolder(ctx context.Context, db *sql.DB, f note.Folder) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO folders (id, name, icon, created_at) VALUES (?, ?, ?, ?)`,
		f.ID, f.Name, f.Icon, time.Now().Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewAlreadyExists("folder", f.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetFolder retrieves persisted folder metadata.
func GetFolder(ctx context.Context, db *sql.DB, id string) (*note.Folder, error) {
	var f note.Folder
	err := db.QueryRowContext(ctx, `SELECT id, name, icon FROM folders WHERE id = ?`, id).Scan(&f.ID, &f.Name, &f.Icon)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("folder", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &f, nil
}

// ListFolders returns all persisted folder metadata keyed by folder id.
func ListFolders(ctx context.Context, db *sql.DB) (map[string]note.Folder, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, icon FROM folders ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	folders := make(map[string]note.Folder)
	for rows.Next() {
		var f note.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Icon); err != nil {
			return nil, errors.NewInternal(err)
		}
		folders[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return folders, nil
}
