package ops

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/hpungsan/orden/internal/catalog"
	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
	"github.com/hpungsan/orden/internal/websearch"
)

// Deps bundles the stores every operation reads from or writes to.
type Deps struct {
	DB      *sql.DB
	Catalog *catalog.Catalog
	Merger  *note.Merger
	Web     websearch.Searcher
	Logger  *slog.Logger
}

// NewDeps wires the overlay merger to database and returns the operation dependencies.
func NewDeps(database *sql.DB, cat *catalog.Catalog, web websearch.Searcher, logger *slog.Logger) *Deps {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deps{
		DB:      database,
		Catalog: cat,
		Merger:  note.NewMerger(db.EditStore{DB: database}),
		Web:     web,
		Logger:  logger,
	}
}

// MutationOutput is returned by operations that only report an outcome.
type MutationOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// required trims s and returns an invalid-arguments error naming field if empty.
func required(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.NewInvalidArguments(field + " is required")
	}
	return s, nil
}

// requireUser rejects calls without an owning user.
func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.NewInvalidArguments("user id is required")
	}
	return nil
}

// folderKnown reports whether id is declared, present on disk, or persisted.
func folderKnown(ctx context.Context, d *Deps, id string) (bool, error) {
	if _, ok := d.Catalog.Lookup(id); ok {
		return true, nil
	}
	if d.Catalog.FolderExists(id) {
		return true, nil
	}
	_, err := db.GetFolder(ctx, d.DB, id)
	if errors.Is(err, errors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// findCustom returns the user's custom note with id, or nil if none exists.
func findCustom(ctx context.Context, d *Deps, userID, id string) (*note.CustomNote, error) {
	c, err := db.GetCustomNote(ctx, d.DB, userID, id)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, nil
	}
	return c, err
}
