package catalog

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached folders when their files change on disk. It
// returns once the watcher is installed; events are processed until ctx is done.
func (c *Catalog) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(c.root); err != nil {
		_ = w.Close()
		return err
	}
	ids, err := c.Discover()
	if err != nil {
		_ = w.Close()
		return err
	}
	for _, id := range ids {
		if err := w.Add(filepath.Join(c.root, id)); err != nil {
			c.logger.WarnContext(ctx, "cannot watch folder", "folder", id, "err", err)
		}
	}

	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				c.handleEvent(ctx, w, event)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.logger.WarnContext(ctx, "error watching data directory", "err", err)
			}
		}
	}()
	return nil
}

func (c *Catalog) handleEvent(ctx context.Context, w *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	rel, err := filepath.Rel(c.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	switch len(parts) {
	case 1:
		// Folder directory created or removed at the root.
		if event.Has(fsnotify.Create) && c.FolderExists(parts[0]) {
			if err := w.Add(event.Name); err != nil {
				c.logger.WarnContext(ctx, "cannot watch folder", "folder", parts[0], "err", err)
			}
		}
		c.Invalidate(parts[0])
	case 2:
		if strings.HasSuffix(parts[1], ".md") {
			c.logger.DebugContext(ctx, "note changed on disk", "folder", parts[0], "file", parts[1], "op", event.Op.String())
			c.Invalidate(parts[0])
		}
	}
}
