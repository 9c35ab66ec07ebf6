package ops

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hpungsan/orden/internal/errors"
	"github.com/hpungsan/orden/internal/websearch"
)

func TestSearchNotes_TitleMatch(t *testing.T) {
	d := testDeps(t)

	out, err := SearchNotes(context.Background(), d, SearchNotesInput{UserID: testUser, Query: "cell"})
	if err != nil {
		t.Fatalf("SearchNotes() error = %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("Count = %d, want 1", out.Count)
	}
	r := out.Results[0]
	if r.NoteID != "cell-biology" || r.MatchType != MatchTitle {
		t.Errorf("result = %+v, want title match", r)
	}
	if !strings.HasPrefix(r.Snippet, "# Cell Biology") {
		t.Errorf("Snippet = %q, want leading content", r.Snippet)
	}
}

func TestSearchNotes_ContentMatch(t *testing.T) {
	d := testDeps(t)

	out, err := SearchNotes(context.Background(), d, SearchNotesInput{UserID: testUser, Query: "MITOCHONDRIA"})
	if err != nil {
		t.Fatalf("SearchNotes() error = %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("Count = %d, want 1", out.Count)
	}
	r := out.Results[0]
	if r.MatchType != MatchContent {
		t.Errorf("MatchType = %q, want content", r.MatchType)
	}
	if !strings.HasPrefix(r.Snippet, "...") || !strings.HasSuffix(r.Snippet, "...") {
		t.Errorf("Snippet = %q, want ellipses", r.Snippet)
	}
	if !strings.Contains(strings.ToLower(r.Snippet), "mitochondria") {
		t.Errorf("Snippet = %q, want match inside", r.Snippet)
	}
}

func TestSearchNotes_FolderFilter(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	// "the" appears in both fixture notes
	all, err := SearchNotes(ctx, d, SearchNotesInput{UserID: testUser, Query: "the"})
	if err != nil {
		t.Fatal(err)
	}
	if all.Count != 2 {
		t.Fatalf("unfiltered Count = %d, want 2", all.Count)
	}

	filtered, err := SearchNotes(ctx, d, SearchNotesInput{UserID: testUser, Query: "the", FolderID: "history"})
	if err != nil {
		t.Fatal(err)
	}
	if filtered.Count != 1 || filtered.Results[0].FolderID != "history" {
		t.Errorf("filtered = %+v", filtered.Results)
	}
}

func TestSearchNotes_CoversDiscoveredFolders(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()
	writeNote(t, d.Catalog.Root(), "chemistry", "bonds", "# Bonds\n\nCovalent and ionic.")

	out, err := SearchNotes(ctx, d, SearchNotesInput{UserID: testUser, Query: "covalent"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Results[0].FolderID != "chemistry" {
		t.Errorf("results = %+v, want the note in the undeclared folder", out.Results)
	}
}

func TestSearchNotes_IncludesCustomNotes(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	created, err := CreateNote(ctx, d, CreateNoteInput{UserID: testUser, FolderID: "history", Title: "Byzantium", Content: "Constantinople"})
	if err != nil {
		t.Fatal(err)
	}

	out, err := SearchNotes(ctx, d, SearchNotesInput{UserID: testUser, Query: "constantinople"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Results[0].NoteID != created.Note.ID || out.Results[0].MatchType != MatchContent {
		t.Errorf("results = %+v", out.Results)
	}

	other, err := SearchNotes(ctx, d, SearchNotesInput{UserID: "other", Query: "constantinople"})
	if err != nil {
		t.Fatal(err)
	}
	if other.Count != 0 {
		t.Errorf("other user Count = %d, want 0", other.Count)
	}
}

func TestSearchNotes_UnicodeCaseFolding(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	if _, err := UpdateNote(ctx, d, UpdateNoteInput{UserID: testUser, NoteID: "cell-biology", FolderID: "biology", Title: stringPtr("Ökologie der Zelle")}); err != nil {
		t.Fatal(err)
	}
	created, err := CreateNote(ctx, d, CreateNoteInput{UserID: testUser, FolderID: "biology", Title: "Ökologie", Content: "Nahrungsnetze"})
	if err != nil {
		t.Fatal(err)
	}

	out, err := SearchNotes(ctx, d, SearchNotesInput{UserID: testUser, Query: "ökologie"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || out.Results[0].NoteID != "cell-biology" || out.Results[1].NoteID != created.Note.ID {
		t.Errorf("results = %+v, want the static and the custom note", out.Results)
	}
}

func TestSearchNotes_SeesOverlay(t *testing.T) {
	d := testDeps(t)
	ctx := context.Background()

	if _, err := UpdateNote(ctx, d, UpdateNoteInput{UserID: testUser, NoteID: "ww1", FolderID: "history", Content: stringPtr("Trenches and tanks")}); err != nil {
		t.Fatal(err)
	}

	out, err := SearchNotes(ctx, d, SearchNotesInput{UserID: testUser, Query: "trenches"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Results[0].NoteID != "ww1" {
		t.Errorf("results = %+v, want overlay content matched", out.Results)
	}
}

func TestSearchNotes_NoMatch(t *testing.T) {
	d := testDeps(t)

	out, err := SearchNotes(context.Background(), d, SearchNotesInput{UserID: testUser, Query: "quantum"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 0 || out.Results == nil {
		t.Errorf("SearchNotes() = %+v, want empty non-nil results", out)
	}
}

func TestSearchNotes_Validation(t *testing.T) {
	d := testDeps(t)

	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", strings.Repeat("a", MaxQueryLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SearchNotes(context.Background(), d, SearchNotesInput{UserID: testUser, Query: tt.query})
			if !errors.Is(err, errors.ErrInvalidArguments) {
				t.Errorf("error = %v, want INVALID_ARGUMENTS", err)
			}
		})
	}
}

func TestWebSearch(t *testing.T) {
	d := testDeps(t)
	fake := &fakeSearcher{results: []websearch.Result{
		{Title: "Go", URL: "https://go.dev", Snippet: "The Go programming language"},
	}}
	d.Web = fake

	out, err := WebSearch(context.Background(), d, WebSearchInput{Query: "  golang "})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if out.Count != 1 || out.Message != "" {
		t.Errorf("WebSearch() = %+v", out)
	}
	if len(fake.queries) != 1 || fake.queries[0] != "golang" {
		t.Errorf("queries = %q, want trimmed query", fake.queries)
	}
}

func TestWebSearch_NoResults(t *testing.T) {
	d := testDeps(t)

	out, err := WebSearch(context.Background(), d, WebSearchInput{Query: "xyzzy"})
	if err != nil {
		t.Fatalf("WebSearch() error = %v", err)
	}
	if out.Count != 0 || len(out.Results) != 0 {
		t.Errorf("Results = %+v, want empty", out.Results)
	}
	if !strings.Contains(out.Message, `"xyzzy"`) {
		t.Errorf("Message = %q, want query quoted", out.Message)
	}
}

func TestWebSearch_UpstreamFailure(t *testing.T) {
	d := testDeps(t)
	d.Web = &fakeSearcher{err: fmt.Errorf("connection refused")}

	_, err := WebSearch(context.Background(), d, WebSearchInput{Query: "golang"})
	if !errors.Is(err, errors.ErrUpstream) {
		t.Fatalf("error = %v, want UPSTREAM_ERROR", err)
	}
	oErr := err.(*errors.OrdenError)
	if oErr.Details["suggestion"] == nil {
		t.Error("missing suggestion detail")
	}
}

func TestWebSearch_EmptyQuery(t *testing.T) {
	d := testDeps(t)

	_, err := WebSearch(context.Background(), d, WebSearchInput{})
	if !errors.Is(err, errors.ErrInvalidArguments) {
		t.Errorf("error = %v, want INVALID_ARGUMENTS", err)
	}
}
