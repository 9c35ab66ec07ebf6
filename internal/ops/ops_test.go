package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/orden/internal/catalog"
	"github.com/hpungsan/orden/internal/db"
	"github.com/hpungsan/orden/internal/websearch"
)

const testUser = "user-1"

const cellBiology = `# Cell Biology

Cells are the basic unit of life. The mitochondria produce ATP.

## Organelles
Nucleus, ribosomes.
`

const worldWarOne = `# The Great War

- [ ] read chapter 3
- [x] watch documentary
`

// fakeSearcher returns canned results.
type fakeSearcher struct {
	results []websearch.Result
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]websearch.Result, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

// testDeps creates a temporary data directory, database and catalog.
// The data directory holds biology/cell-biology.md and history/ww1.md.
func testDeps(t *testing.T) *Deps {
	t.Helper()
	base := t.TempDir()

	dataDir := filepath.Join(base, "notes")
	writeNote(t, dataDir, "biology", "cell-biology", cellBiology)
	writeNote(t, dataDir, "history", "ww1", worldWarOne)

	database, err := db.Init(base)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cat, err := catalog.Open(dataDir, nil)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}

	return NewDeps(database, cat, &fakeSearcher{}, nil)
}

func writeNote(t *testing.T, dataDir, folder, id, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".md"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func stringPtr(s string) *string {
	return &s
}
