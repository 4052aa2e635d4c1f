// Package testutil provides shared test helpers for vaults, settings stores
// and metadata caches.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/currentview/internal/index"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestDB creates a temporary metadata cache that is closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault holding files (path → content).
func TestVault(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	for p, content := range files {
		if err := store.Write(p, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return vaultDir, store
}

// TestSettings opens a settings store backed by a temp data.json, seeded
// with s when non-nil.
func TestSettings(t *testing.T, s *settings.Settings) *settings.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if s != nil {
		data, err := settings.Encode(*s, settings.FormatJSON)
		if err != nil {
			t.Fatal(err)
		}
		if err := storage.WriteFileAtomic(path, data); err != nil {
			t.Fatal(err)
		}
	}
	st, err := settings.OpenFile(path, Logger())
	if err != nil {
		t.Fatal(err)
	}
	return st
}
