package index

import (
	"log/slog"
	"path"
	"strings"

	"github.com/starford/currentview/internal/parser"
	"github.com/starford/currentview/internal/storage"
)

// Sync brings the cache in line with the vault: changed notes are re-parsed,
// notes gone from disk are dropped. Per-note failures are logged and skipped.
func Sync(db NoteIndex, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}
	cached, err := db.AllChecksums()
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(metas))
	indexed := 0
	for _, m := range metas {
		onDisk[m.Path] = struct{}{}
		if cached[m.Path] == m.Checksum {
			continue
		}
		if err := IndexNote(db, store, m.Path); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		indexed++
	}

	removed := 0
	for p := range cached {
		if _, ok := onDisk[p]; ok {
			continue
		}
		if err := db.DeleteNote(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed++
	}

	logger.Info("sync: done",
		slog.Int("notes", len(metas)),
		slog.Int("indexed", indexed),
		slog.Int("removed", removed))
	return nil
}

// IndexNote reads the note at p from store and upserts its frontmatter.
func IndexNote(db NoteIndex, store storage.Provider, p string) error {
	data, err := store.Read(p)
	if err != nil {
		return err
	}
	return indexData(db, p, data)
}

func indexData(db NoteIndex, p string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	base := path.Base(p)
	return db.UpsertNote(NoteRow{
		Path:        p,
		Basename:    strings.TrimSuffix(base, path.Ext(base)),
		Title:       res.Title,
		Checksum:    storage.Checksum(data),
		Frontmatter: res.Frontmatter,
	})
}
