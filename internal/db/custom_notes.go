package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

const customNoteColumns = `id, user_id, folder_id, type, title, subtitle, content, date, created_at`

// CustomNotePatch lists the editable fields of a custom note. Nil = unchanged.
type CustomNotePatch struct {
	Title    *string
	Content  *string
	Subtitle *string
}

// InsertCustomNote stores a new custom note.
func InsertCustomNote(ctx context.Context, db *sql.DB, n *note.CustomNote) error {
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}

	query := `INSERT INTO custom_notes (` + customNoteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		n.ID, n.UserID, n.FolderID, string(n.Kind), n.Title, n.Subtitle, n.Content, n.Date, n.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetCustomNote retrieves a custom note owned by userID.
func GetCustomNote(ctx context.Context, db *sql.DB, userID, id string) (*note.CustomNote, error) {
	query := `SELECT ` + customNoteColumns + ` FROM custom_notes WHERE user_id = ? AND id = ?`

	n, err := scanCustomNote(db.QueryRowContext(ctx, query, userID, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("note", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return n, nil
}

// ListCustomNotes returns userID's custom notes, oldest first.
// An empty folderID lists every folder.
func ListCustomNotes(ctx context.Context, db *sql.DB, userID, folderID string) ([]note.CustomNote, error) {
	query := `SELECT ` + customNoteColumns + ` FROM custom_notes WHERE user_id = ?`
	args := []any{userID}
	if folderID != "" {
		query += ` AND folder_id = ?`
		args = append(args, folderID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	return queryCustomNotes(ctx, db, query, args...)
}

// SearchCustomNotes returns userID's custom notes whose title or content
// contains query, ignoring case with Unicode folding. SQLite's LIKE only
// folds ASCII, so matching happens on the loaded rows. An empty folderID
// searches all folders.
func SearchCustomNotes(ctx context.Context, db *sql.DB, userID, query, folderID string) ([]note.CustomNote, error) {
	all, err := ListCustomNotes(ctx, db, userID, folderID)
	if err != nil {
		return nil, err
	}
	matches := make([]note.CustomNote, 0, len(all))
	for _, n := range all {
		if note.ContainsFold(n.Title, query) || note.ContainsFold(n.Content, query) {
			matches = append(matches, n)
		}
	}
	return matches, nil
}

// UpdateCustomNote applies the supplied fields of p to a custom note.
func UpdateCustomNote(ctx context.Context, db *sql.DB, userID, id string, p CustomNotePatch) error {
	query := `
		UPDATE custom_notes
		SET title    = COALESCE(?, title),
			content  = COALESCE(?, content),
			subtitle = COALESCE(?, subtitle)
		WHERE user_id = ? AND id = ?
	`

	result, err := db.ExecContext(ctx, query,
		toNullString(p.Title), toNullString(p.Content), toNullString(p.Subtitle),
		userID, id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("note", id)
	}
	return nil
}

// DeleteCustomNote removes a custom note and reports whether it existed.
func DeleteCustomNote(ctx context.Context, db *sql.DB, userID, id string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM custom_notes WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// CountCustomNotes returns userID's custom note count per folder.
func CountCustomNotes(ctx context.Context, db *sql.DB, userID string) (map[string]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT folder_id, COUNT(*) FROM custom_notes WHERE user_id = ? GROUP BY folder_id`, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			folderID string
			n        int
		)
		if err := rows.Scan(&folderID, &n); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts[folderID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return counts, nil
}

func queryCustomNotes(ctx context.Context, db *sql.DB, query string, args ...any) ([]note.CustomNote, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	notes := make([]note.CustomNote, 0)
	for rows.Next() {
		n, err := scanCustomNote(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return notes, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCustomNote scans a single row into a CustomNote struct.
func scanCustomNote(row rowScanner) (*note.CustomNote, error) {
	var (
		n    note.CustomNote
		kind string
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.FolderID, &kind, &n.Title, &n.Subtitle, &n.Content, &n.Date, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Kind = note.Kind(kind)
	return &n, nil
}
