// Package catalog exposes the file-backed note tree: one directory per folder,
// one markdown file per static note, plus an optional folders.yaml that
// declares display names and icons.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/orden/internal/note"
)

// FileName is the folder declaration file at the catalog root.
const FileName = "folders.yaml"

// DefaultIcon is used for folders without declared metadata.
const DefaultIcon = "folder"

// ErrFolderExists is returned by CreateFolder when the directory already exists.
var ErrFolderExists = errors.New("folder already exists")

var folderIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidFolderID reports whether id is safe to use as a directory name.
func ValidFolderID(id string) bool {
	return folderIDPattern.MatchString(id)
}

// validNoteID rejects ids that could escape the folder directory.
func validNoteID(id string) bool {
	return id != "" && !strings.HasPrefix(id, ".") && !strings.ContainsAny(id, `/\`)
}

// FolderSpec is a declared folder.
type FolderSpec struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type fileFormat struct {
	Folders []FolderSpec `yaml:"folders"`
}

// DefaultFolders are declared when the root has no folders.yaml.
var DefaultFolders = []FolderSpec{
	{ID: "biology", Name: "Biology 101", Icon: "biotech"},
	{ID: "history", Name: "World History", Icon: "history_edu"},
}

// Catalog reads static notes from disk. Parsed folders are cached until
// Invalidate is called, either directly or by Watch.
type Catalog struct {
	root       string
	configured []FolderSpec
	logger     *slog.Logger

	mu    sync.RWMutex
	notes map[string][]note.StaticNote
}

// Open loads the catalog rooted at root. The root directory is created if missing.
func Open(root string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	configured, err := loadSpecs(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}

	return &Catalog{
		root:       root,
		configured: configured,
		logger:     logger,
		notes:      make(map[string][]note.StaticNote),
	}, nil
}

func loadSpecs(path string) ([]FolderSpec, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return slices.Clone(DefaultFolders), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	specs := make([]FolderSpec, 0, len(f.Folders))
	seen := make(map[string]bool)
	for _, s := range f.Folders {
		if !ValidFolderID(s.ID) {
			return nil, fmt.Errorf("%s: invalid folder id %q", FileName, s.ID)
		}
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		if s.Name == "" {
			s.Name = DisplayName(s.ID)
		}
		if s.Icon == "" {
			s.Icon = DefaultIcon
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// DisplayName derives a folder name from its id by capitalizing the first letter.
func DisplayName(id string) string {
	if id == "" {
		return id
	}
	r := []rune(id)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Root returns the catalog root directory.
func (c *Catalog) Root() string {
	return c.root
}

// Configured returns the declared folders in declaration order.
func (c *Catalog) Configured() []FolderSpec {
	return slices.Clone(c.configured)
}

// Lookup returns the declared folder with id.
func (c *Catalog) Lookup(id string) (FolderSpec, bool) {
	for _, s := range c.configured {
		if s.ID == id {
			return s, true
		}
	}
	return FolderSpec{}, false
}

// Discover returns the ids of all folder directories under the root, sorted.
func (c *Catalog) Discover() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && ValidFolderID(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// FolderIDs returns declared folders followed by discovered ones not declared.
func (c *Catalog) FolderIDs() ([]string, error) {
	discovered, err := c.Discover()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(c.configured)+len(discovered))
	for _, s := range c.configured {
		ids = append(ids, s.ID)
	}
	for _, id := range discovered {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// FolderExists reports whether the folder directory exists on disk.
func (c *Catalog) FolderExists(id string) bool {
	if !ValidFolderID(id) {
		return false
	}
	info, err := os.Stat(filepath.Join(c.root, id))
	return err == nil && info.IsDir()
}

// CreateFolder creates the folder directory. Returns ErrFolderExists if present.
func (c *Catalog) CreateFolder(id string) error {
	if !ValidFolderID(id) {
		return fmt.Errorf("invalid folder id %q", id)
	}
	err := os.Mkdir(filepath.Join(c.root, id), 0755)
	if errors.Is(err, fs.ErrExist) {
		return ErrFolderExists
	}
	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	c.Invalidate(id)
	return nil
}

// Notes returns the static notes in folderID sorted by id.
// A missing folder directory yields no notes.
func (c *Catalog) Notes(folderID string) ([]note.StaticNote, error) {
	if !ValidFolderID(folderID) {
		return nil, nil
	}

	c.mu.RLock()
	cached, ok := c.notes[folderID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	notes, err := c.readFolder(folderID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.notes[folderID] = notes
	c.mu.Unlock()
	return notes, nil
}

// Note returns a single static note. ok is false if it does not exist.
func (c *Catalog) Note(folderID, noteID string) (note.StaticNote, bool, error) {
	if !validNoteID(noteID) {
		return note.StaticNote{}, false, nil
	}
	notes, err := c.Notes(folderID)
	if err != nil {
		return note.StaticNote{}, false, err
	}
	for _, n := range notes {
		if n.ID == noteID {
			return n, true, nil
		}
	}
	return note.StaticNote{}, false, nil
}

// Count returns the number of static notes in folderID.
func (c *Catalog) Count(folderID string) (int, error) {
	notes, err := c.Notes(folderID)
	return len(notes), err
}

// Invalidate drops cached notes for folderID. An empty id drops everything.
func (c *Catalog) Invalidate(folderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if folderID == "" {
		c.notes = make(map[string][]note.StaticNote)
		return
	}
	delete(c.notes, folderID)
}

func (c *Catalog) readFolder(folderID string) ([]note.StaticNote, error) {
	dir := filepath.Join(c.root, folderID)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []note.StaticNote{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folderID, err)
	}

	notes := make([]note.StaticNote, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		id := strings.TrimSuffix(name, ".md")
		if !validNoteID(id) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			c.logger.Warn("skipping unreadable note", "folder", folderID, "file", name, "err", err)
			continue
		}
		notes = append(notes, note.StaticNote{ID: id, FolderID: folderID, Content: string(data)})
	}
	return notes, nil
}
