package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/currentview/internal/apperr"
	"github.com/starford/currentview/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestUpsertAndGetNote(t *testing.T) {
	db := testDB(t)
	row := NoteRow{
		Path:        "journal/today.md",
		Basename:    "today",
		Title:       "Today",
		Checksum:    "abc123",
		Frontmatter: map[string]any{"current view": "reading", "tags": []any{"a"}},
		UpdatedAt:   time.Now(),
	}
	if err := db.UpsertNote(row); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.GetChecksum("journal/today.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}

	got, err := db.GetNote("journal/today.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Basename != "today" || got.Title != "Today" {
		t.Errorf("row = %+v", got)
	}
	if got.Frontmatter["current view"] != "reading" {
		t.Errorf("frontmatter = %v", got.Frontmatter)
	}
}

func TestUpsertNilFrontmatter(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertNote(NoteRow{Path: "plain.md", Checksum: "1"}); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	fm, err := db.Frontmatter("plain.md")
	if err != nil {
		t.Fatalf("Frontmatter: %v", err)
	}
	if len(fm) != 0 {
		t.Errorf("frontmatter = %v, want empty", fm)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "up.md", Checksum: "1", Frontmatter: map[string]any{"current view": "live"}})
	_ = db.UpsertNote(NoteRow{Path: "up.md", Checksum: "2", Frontmatter: map[string]any{"current view": "source"}})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	fm, _ := db.Frontmatter("up.md")
	if fm["current view"] != "source" {
		t.Errorf("frontmatter = %v", fm)
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "del.md", Checksum: "x"})

	if err := db.DeleteNote("del.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	if err := db.DeleteNote("del.md"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil || cs != "" {
		t.Fatalf("GetChecksum = %q, %v", cs, err)
	}
	_, err = db.Frontmatter("nonexistent.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListPaths(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"b.md", "a/x.md", "a/b/y.md", "ab/z.md"} {
		_ = db.UpsertNote(NoteRow{Path: p, Checksum: "1"})
	}
	all, err := db.ListPaths("")
	if err != nil {
		t.Fatalf("ListPaths: %v", err)
	}
	if len(all) != 4 || all[0] != "a/b/y.md" {
		t.Errorf("all = %v", all)
	}
	under, _ := db.ListPaths("/a/")
	if len(under) != 2 || under[0] != "a/b/y.md" || under[1] != "a/x.md" {
		t.Errorf("under a = %v", under)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	vault := t.TempDir()
	store, err := storage.NewFS(vault)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("one.md", []byte("---\ncurrent view: live\n---\nbody"))
	_ = store.Write("dir/two.md", []byte("# Two"))
	_ = db.UpsertNote(NoteRow{Path: "stale.md", Checksum: "old"})

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	sums, _ := db.AllChecksums()
	if len(sums) != 2 {
		t.Fatalf("checksums = %v", sums)
	}
	if _, ok := sums["stale.md"]; ok {
		t.Error("stale entry not removed")
	}
	fm, _ := db.Frontmatter("one.md")
	if fm["current view"] != "live" {
		t.Errorf("frontmatter = %v", fm)
	}
	n, err := db.GetNote("dir/two.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n.Basename != "two" || n.Title != "Two" {
		t.Errorf("row = %+v", n)
	}
}

func TestPing(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "ping.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping on open db: %v", err)
	}
	db.Close()
	if err := db.Ping(context.Background()); err == nil {
		t.Error("Ping on closed db should fail")
	}
}
