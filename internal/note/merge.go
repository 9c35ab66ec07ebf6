package note

import (
	"context"
	"sync"
)

// EditStore persists per-user overlays.
type EditStore interface {
	// GetEdit returns the overlay for (userID, noteID), or nil if none exists.
	GetEdit(ctx context.Context, userID, noteID string) (*Edit, error)
	// EditStamp returns the current Stamp of the overlay, or "" if none exists.
	EditStamp(ctx context.Context, userID, noteID string) (string, error)
	// SaveEdit inserts the overlay or patches the supplied fields of an existing one.
	SaveEdit(ctx context.Context, patch EditPatch) error
	// DeleteEdit removes the overlay and reports whether one existed.
	DeleteEdit(ctx context.Context, userID, noteID string) (bool, error)
}

// maxCachedEdits bounds the overlay cache; it is reset when full.
const maxCachedEdits = 1024

type editKey struct {
	userID string
	noteID string
}

// Merger overlays per-user edits on static notes. Overlays are cached by
// (user, note id) and revalidated against the store's stamp on every read,
// so writes made by other processes sharing the store are seen immediately.
type Merger struct {
	store EditStore

	mu    sync.RWMutex
	cache map[editKey]*Edit // nil value caches "no overlay"
}

// NewMerger creates a Merger backed by store.
func NewMerger(store EditStore) *Merger {
	return &Merger{
		store: store,
		cache: make(map[editKey]*Edit),
	}
}

// Edit returns the overlay for (userID, noteID), or nil if none exists.
func (m *Merger) Edit(ctx context.Context, userID, noteID string) (*Edit, error) {
	key := editKey{userID, noteID}

	stamp, err := m.store.EditStamp(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	e, ok := m.cache[key]
	m.mu.RUnlock()
	if ok && e.Stamp() == stamp {
		return e, nil
	}

	e = nil
	if stamp != "" {
		if e, err = m.store.GetEdit(ctx, userID, noteID); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	if len(m.cache) >= maxCachedEdits {
		clear(m.cache)
	}
	m.cache[key] = e
	m.mu.Unlock()
	return e, nil
}

// Merge returns the effective view of s for userID.
func (m *Merger) Merge(ctx context.Context, userID string, s StaticNote) (Note, error) {
	e, err := m.Edit(ctx, userID, s.ID)
	if err != nil {
		return Note{}, err
	}
	return Apply(s, e), nil
}

// SaveEdit writes patch and drops the cached overlay.
func (m *Merger) SaveEdit(ctx context.Context, patch EditPatch) error {
	defer m.Invalidate(patch.UserID, patch.NoteID)
	return m.store.SaveEdit(ctx, patch)
}

// ClearEdit removes the overlay and drops the cached entry.
func (m *Merger) ClearEdit(ctx context.Context, userID, noteID string) (bool, error) {
	defer m.Invalidate(userID, noteID)
	return m.store.DeleteEdit(ctx, userID, noteID)
}

// Invalidate drops the cached overlay for (userID, noteID).
func (m *Merger) Invalidate(userID, noteID string) {
	m.mu.Lock()
	delete(m.cache, editKey{userID, noteID})
	m.mu.Unlock()
}

// Apply merges e over s. Non-empty overlay fields win; the kind is inferred
// from the effective content.
func Apply(s StaticNote, e *Edit) Note {
	n := Note{
		ID:       s.ID,
		FolderID: s.FolderID,
		Title:    ExtractTitle(s.Content, s.ID),
		Content:  s.Content,
		Date:     StaticDate,
	}
	if e != nil {
		if v := deref(e.Title); v != "" {
			n.Title = v
		}
		if v := deref(e.Content); v != "" {
			n.Content = v
		}
		n.Subtitle = deref(e.Subtitle)
	}
	n.Kind = InferKind(n.Content)
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
