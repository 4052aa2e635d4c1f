package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/currentview/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a watcher-driven cache change with one of the
// Event* kinds and the slash-separated vault path.
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

// Watcher keeps the cache current from fsnotify events.
type Watcher struct {
	db     NoteIndex
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
}

// NewWatcher builds a watcher for the vault at root. cb may be nil.
func NewWatcher(db NoteIndex, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) *Watcher {
	if cb == nil {
		cb = func(string, string) {}
	}
	return &Watcher{db: db, store: store, root: root, logger: logger, cb: cb}
}

// Watch runs a Watcher until ctx is cancelled.
func Watch(ctx context.Context, db NoteIndex, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	return NewWatcher(db, store, root, logger, cb).Run(ctx)
}

// Run watches every non-hidden folder of the vault, following folders
// created later. Renames drop the old path at once and schedule a
// reconciliation pass that picks up the new one.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addDirs(fw, w.root); err != nil {
		return err
	}
	w.logger.Info("watcher: started", slog.String("root", w.root))

	reconcile := time.NewTimer(reconcileDelay)
	reconcile.Stop()
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(fw, ev) {
				reconcile.Reset(reconcileDelay)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// handle applies one event and reports whether a reconciliation is due.
func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if hidden(info.Name()) {
				return false
			}
			if err := w.addDirs(fw, ev.Name); err != nil {
				w.logger.Warn("watcher: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			w.indexDir(ev.Name)
			return false
		}
	}

	if !storage.IsNote(ev.Name) {
		if ev.Op&(fsnotify.Rename|fsnotify.Remove) == 0 {
			return false
		}
		// A renamed or removed folder leaves its notes behind in the cache.
		if rel, ok := w.rel(ev.Name); ok && rel != "." {
			w.dropFolder(rel)
		}
		return true
	}
	rel, ok := w.rel(ev.Name)
	if !ok {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if err := IndexNote(w.db, w.store, rel); err != nil {
			w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		kind := EventUpdated
		if ev.Op&fsnotify.Create != 0 {
			kind = EventCreated
		}
		w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
		w.cb(kind, rel)
	case ev.Op&fsnotify.Remove != 0:
		w.drop(rel)
	case ev.Op&fsnotify.Rename != 0:
		w.drop(rel)
		return true
	}
	return false
}

func (w *Watcher) drop(rel string) {
	if err := w.db.DeleteNote(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.cb(EventDeleted, rel)
}

func (w *Watcher) dropFolder(rel string) {
	paths, err := w.db.ListPaths(rel)
	if err != nil {
		w.logger.Warn("watcher: list folder failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	for _, p := range paths {
		w.drop(p)
	}
}

// reconcile diffs the cache against the vault after renames.
func (w *Watcher) reconcile() {
	cached, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	onDisk := make(map[string]string, len(metas))
	for _, m := range metas {
		onDisk[m.Path] = m.Checksum
	}
	for p := range cached {
		if _, ok := onDisk[p]; !ok {
			w.drop(p)
		}
	}
	for p, cs := range onDisk {
		old, known := cached[p]
		if known && old == cs {
			continue
		}
		if err := IndexNote(w.db, w.store, p); err != nil {
			continue
		}
		kind := EventCreated
		if known {
			kind = EventUpdated
		}
		w.cb(kind, p)
	}
}

// indexDir indexes notes already present in a newly created folder.
func (w *Watcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsNote(d.Name()) {
			return nil
		}
		rel, ok := w.rel(p)
		if !ok {
			return nil
		}
		if err := IndexNote(w.db, w.store, rel); err == nil {
			w.logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			w.cb(EventCreated, rel)
		}
		return nil
	})
}

func (w *Watcher) rel(abs string) (string, bool) {
	r, err := filepath.Rel(w.root, abs)
	if err != nil || strings.HasPrefix(r, "..") {
		return "", false
	}
	r = filepath.ToSlash(r)
	for _, part := range strings.Split(r, "/") {
		if hidden(part) {
			return "", false
		}
	}
	return r, true
}

// addDirs watches root and every non-hidden folder below it.
func (w *Watcher) addDirs(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
