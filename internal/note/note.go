package note

import "strconv"

// Kind is the presentation type of a note.
type Kind string

const (
	KindSummary Kind = "summary"
	KindSlides  Kind = "slides"
	KindArticle Kind = "article"
	KindTasks   Kind = "tasks"
	KindAudio   Kind = "audio"
)

// Kinds lists every accepted note kind, in display order.
var Kinds = []Kind{KindSummary, KindSlides, KindArticle, KindTasks, KindAudio}

// ParseKind validates a kind string. Empty input yields KindSummary.
func ParseKind(s string) (Kind, bool) {
	if s == "" {
		return KindSummary, true
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// StaticDate is the display date reported for file-backed notes.
const StaticDate = "static"

// Folder is a named grouping of notes.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	NoteCount int    `json:"noteCount"`
}

// StaticNote is an immutable markdown note read from the data directory.
type StaticNote struct {
	ID       string
	FolderID string
	Content  string
}

// Edit is a per-user overlay on a static note. Nil fields are not overridden.
type Edit struct {
	ID        string
	UserID    string
	NoteID    string
	FolderID  string
	Title     *string
	Content   *string
	Subtitle  *string
	UpdatedAt int64
	Revision  int64
}

// Stamp identifies this version of the overlay. A rewritten or recreated
// overlay gets a new stamp; a nil Edit has the empty stamp.
func (e *Edit) Stamp() string {
	if e == nil {
		return ""
	}
	return e.ID + ":" + strconv.FormatInt(e.Revision, 10)
}

// EditPatch describes fields to write into an overlay. Nil fields are left as-is.
type EditPatch struct {
	UserID   string
	NoteID   string
	FolderID string
	Title    *string
	Content  *string
	Subtitle *string
}

// Empty reports whether the patch carries no editable field.
func (p EditPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Subtitle == nil
}

// CustomNote is a user-created note stored in the database.
type CustomNote struct {
	ID        string
	UserID    string
	FolderID  string
	Kind      Kind
	Title     string
	Subtitle  string
	Content   string
	Date      string
	CreatedAt int64
}

// Note is the effective view of a note handed to callers.
type Note struct {
	ID       string `json:"id"`
	FolderID string `json:"folderId"`
	Kind     Kind   `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	IsCustom bool   `json:"isCustom"`
}

// Summary is the listing form of a note.
type Summary struct {
	ID       string `json:"id"`
	FolderID string `json:"folderId"`
	Kind     Kind   `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Preview  string `json:"preview"`
	Date     string `json:"date"`
	IsCustom bool   `json:"isCustom"`
}

// FromCustom converts a stored custom note into its effective view.
func FromCustom(c *CustomNote) Note {
	return Note{
		ID:       c.ID,
		FolderID: c.FolderID,
		Kind:     c.Kind,
		Title:    c.Title,
		Subtitle: c.Subtitle,
		Content:  c.Content,
		Date:     c.Date,
		IsCustom: true,
	}
}

// Summarize builds the listing form of n. An empty subtitle falls back to
// the first characters of the preview.
func Summarize(n Note) Summary {
	preview := Preview(n.Content)
	subtitle := n.Subtitle
	if subtitle == "" && !n.IsCustom {
		subtitle = Truncate(preview, SubtitleChars)
	}
	return Summary{
		ID:       n.ID,
		FolderID: n.FolderID,
		Kind:     n.Kind,
		Title:    n.Title,
		Subtitle: subtitle,
		Preview:  preview,
		Date:     n.Date,
		IsCustom: n.IsCustom,
	}
}
