package ops

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/note"
)

// MaxQueryLength bounds search queries.
const MaxQueryLength = 500

// Match types reported by SearchNotes.
const (
	MatchTitle   = "title"
	MatchContent = "content"
)

// SearchNotesInput contains parameters for the SearchNotes operation.
type SearchNotesInput struct {
	UserID   string `json:"-"`
	Query    string `json:"query"`
	FolderID string `json:"folderId,omitempty"` // optional filter
}

// Validate checks the query.
func (in *SearchNotesInput) Validate() error {
	var err error
	if in.Query, err = required("query", in.Query); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Query) > MaxQueryLength {
		return errors.NewInvalidArguments(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}
	return nil
}

// SearchResult is a single search hit.
type SearchResult struct {
	NoteID    string `json:"noteId"`
	FolderID  string `json:"folderId"`
	Title     string `json:"title"`
	MatchType string `json:"matchType"`
	Snippet   string `json:"snippet"`
}

// SearchNotesOutput contains the result of the SearchNotes operation.
type SearchNotesOutput struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// SearchNotes finds notes whose title or content contains the query, ignoring
// case. A title hit takes precedence over a content hit. Static notes are
// searched as the user sees them (overlay applied), then custom notes.
func SearchNotes(ctx context.Context, d *Deps, input SearchNotesInput) (*SearchNotesOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := requireUser(input.UserID); err != nil {
		return nil, err
	}

	folders := []string{input.FolderID}
	if input.FolderID == "" {
		ids, err := d.Catalog.FolderIDs()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		folders = ids
	}

	results := make([]SearchResult, 0)
	for _, folderID := range folders {
		statics, err := d.Catalog.Notes(folderID)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		for _, s := range statics {
			n, err := d.Merger.Merge(ctx, input.UserID, s)
			if err != nil {
				return nil, err
			}
			if r, ok := match(n, input.Query); ok {
				results = append(results, r)
			}
		}
	}

	customs, err := db.SearchCustomNotes(ctx, d.DB, input.UserID, input.Query, input.FolderID)
	if err != nil {
		return nil, err
	}
	for i := range customs {
		if r, ok := match(note.FromCustom(&customs[i]), input.Query); ok {
			results = append(results, r)
		}
	}

	return &SearchNotesOutput{Results: results, Count: len(results)}, nil
}

func match(n note.Note, query string) (SearchResult, bool) {
	titleHit := note.ContainsFold(n.Title, query)
	snippet, ok := note.Snippet(n.Content, query, titleHit)
	if !ok {
		return SearchResult{}, false
	}
	matchType := MatchContent
	if titleHit {
		matchType = MatchTitle
	}
	return SearchResult{
		NoteID:    n.ID,
		FolderID:  n.FolderID,
		Title:     n.Title,
		MatchType: matchType,
		Snippet:   snippet,
	}, true
}
