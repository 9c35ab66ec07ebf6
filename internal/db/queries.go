package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.OrdenError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// GetEdit retrieves the overlay for (userID, noteID).
// Returns nil, nil if the user has not edited the note.
func GetEdit(ctx context.Context, db *sql.DB, userID, noteID string) (*note.Edit, error) {
	query := `
		SELECT id, user_id, note_id, folder_id, title, content, subtitle, updated_at, revision
		FROM note_edits
		WHERE user_id = ? AND note_id = ?
	`

	var (
		e        note.Edit
		title    sql.NullString
		content  sql.NullString
		subtitle sql.NullString
	)
	err := db.QueryRowContext(ctx, query, userID, noteID).Scan(
		&e.ID, &e.UserID, &e.NoteID, &e.FolderID, &title, &content, &subtitle, &e.UpdatedAt, &e.Revision,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	e.Title = fromNullString(title)
	e.Content = fromNullString(content)
	e.Subtitle = fromNullString(subtitle)
	return &e, nil
}

// UpsertEdit inserts an overlay or patches the supplied fields of the
// existing one. Fields left nil keep their stored value; updated_at is refreshed.
func UpsertEdit(ctx context.Context, db *sql.DB, p note.EditPatch) error {
	query := `
		INSERT INTO note_edits (id, user_id, note_id, folder_id, title, content, subtitle, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, note_id) DO UPDATE SET
			folder_id  = excluded.folder_id,
			title      = COALESCE(excluded.title, note_edits.title),
			content    = COALESCE(excluded.content, note_edits.content),
			subtitle   = COALESCE(excluded.subtitle, note_edits.subtitle),
			updated_at = excluded.updated_at,
			revision   = note_edits.revision + 1
	`

	_, err := db.ExecContext(ctx, query,
		uuid.NewString(), p.UserID, p.NoteID, p.FolderID,
		toNullString(p.Title), toNullString(p.Content), toNullString(p.Subtitle),
		time.Now().Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetEditStamp returns the version stamp of the overlay for (userID, noteID),
// or "" if the user has not edited the note. It reads no overlay content.
func GetEditStamp(ctx context.Context, db *sql.DB, userID, noteID string) (string, error) {
	e := note.Edit{UserID: userID, NoteID: noteID}
	err := db.QueryRowContext(ctx,
		`SELECT id, revision FROM note_edits WHERE user_id = ? AND note_id = ?`,
		userID, noteID,
	).Scan(&e.ID, &e.Revision)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return e.Stamp(), nil
}

// DeleteEdit removes the overlay for (userID, noteID) and reports whether one existed.
func DeleteEdit(ctx context.Context, db *sql.DB, userID, noteID string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM note_edits WHERE user_id = ? AND note_id = ?`, userID, noteID)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListEdits returns every overlay owned by userID, most recently updated first.
func ListEdits(ctx context.Context, db *sql.DB, userID string) ([]note.Edit, error) {
	query := `
		SELECT id, user_id, note_id, folder_id, title, content, subtitle, updated_at, revision
		FROM note_edits
		WHERE user_id = ?
		ORDER BY updated_at DESC, note_id ASC
	`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	edits := make([]note.Edit, 0)
	for rows.Next() {
		var (
			e        note.Edit
			title    sql.NullString
			content  sql.NullString
			subtitle sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.NoteID, &e.FolderID, &title, &content, &subtitle, &e.UpdatedAt, &e.Revision); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Title = fromNullString(title)
		e.Content = fromNullString(content)
		e.Subtitle = fromNullString(subtitle)
		edits = append(edits, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return edits, nil
}

// EditStore adapts the overlay queries to note.EditStore.
type EditStore struct {
	DB *sql.DB
}

// GetEdit implements note.EditStore.
func (s EditStore) GetEdit(ctx context.Context, userID, noteID string) (*note.Edit, error) {
	return GetEdit(ctx, s.DB, userID, noteID)
}

// EditStamp implements note.EditStore.
func (s EditStore) EditStamp(ctx context.Context, userID, noteID string) (string, error) {
	return GetEditStamp(ctx, s.DB, userID, noteID)
}

// SaveEdit implements note.EditStore.
func (s EditStore) SaveEdit(ctx context.Context, p note.EditPatch) error {
	return UpsertEdit(ctx, s.DB, p)
}

// DeleteEdit implements note.EditStore.
func (s EditStore) DeleteEdit(ctx context.Context, userID, noteID string) (bool, error) {
	return DeleteEdit(ctx, s.DB, userID, noteID)
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
