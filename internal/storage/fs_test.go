package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("---\ncurrent view: reading\n---\nbody\n")
	if err := s.Write("note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.IsDir("a/b") {
		t.Error("a/b should be a folder")
	}
	if s.IsDir("a/b/c.md") {
		t.Error("a file is not a folder")
	}
	if s.IsDir("missing") {
		t.Error("missing path is not a folder")
	}
}

func TestReadBackslashPath(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("dir/x.md", []byte("x"))
	got, err := s.Read(`dir\x.md`)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "x" {
		t.Errorf("content = %q", got)
	}
}

func TestMove(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "sub/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("sub/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestMoveFolder(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("projects/a.md", []byte("a"))
	if err := s.Move("projects", "archive/projects"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !s.IsDir("archive/projects") {
		t.Error("moved folder missing")
	}
	if _, err := s.Read("archive/projects/a.md"); err != nil {
		t.Errorf("note in moved folder: %v", err)
	}
}

func TestMoveRefusesExistingTarget(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("b.md", []byte("b"))
	err := s.Move("a.md", "b.md")
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Move over existing = %v, want ErrExist", err)
	}
	got, _ := s.Read("b.md")
	if string(got) != "b" {
		t.Error("target was overwritten")
	}
}

func TestMoveRefusesVaultRoot(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	for _, tc := range [][2]string{{"", "elsewhere"}, {".", "x"}, {"a.md", ""}} {
		if err := s.Move(tc[0], tc[1]); !errors.Is(err, ErrOutsideVault) {
			t.Errorf("Move(%q, %q) = %v, want ErrOutsideVault", tc[0], tc[1], err)
		}
	}
	if _, err := s.Read("a.md"); err != nil {
		t.Errorf("note should stay in place: %v", err)
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("readme.txt", []byte("not md"))
	_ = s.Write(".trash/gone.md", []byte("hidden"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	paths := []string{items[0].Path, items[1].Path}
	sort.Strings(paths)
	if paths[0] != "a.md" || paths[1] != "sub/b.md" {
		t.Errorf("paths = %v", paths)
	}
	if items[0].Checksum == "" {
		t.Error("expected checksum")
	}
}

func TestTree(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/deeper/b.md", []byte("b"))
	_ = s.Write("sub/image.png", []byte("png"))
	_ = s.Write(".obsidian/plugins/x/data.json", []byte("{}"))

	entries, err := s.Tree("")
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	got := map[string]bool{}
	for _, e := range entries {
		got[e.Path] = e.IsDir
	}
	want := map[string]bool{
		"a.md":            false,
		"sub":             true,
		"sub/deeper":      true,
		"sub/deeper/b.md": false,
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for p, isDir := range want {
		if d, ok := got[p]; !ok || d != isDir {
			t.Errorf("entry %q: got (%v, %v), want isDir=%v", p, d, ok, isDir)
		}
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); !errors.Is(err, ErrOutsideVault) {
			t.Errorf("Read(%q) = %v, want ErrOutsideVault", p, err)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if s.IsDir(p) {
			t.Errorf("IsDir(%q) should be false", p)
		}
	}
}

func TestSafePath_StaysInside(t *testing.T) {
	s := tempVault(t)
	for _, p := range []string{"", ".", "a/../b.md", "./notes/x.md"} {
		abs, err := s.safePath(p)
		if err != nil {
			t.Errorf("safePath(%q): %v", p, err)
			continue
		}
		if abs != s.root && filepath.Dir(abs) != s.root && filepath.Dir(filepath.Dir(abs)) != s.root {
			t.Errorf("safePath(%q) = %q, outside %q", p, abs, s.root)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".currentview-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestWriteFileAtomic_OutsideVault(t *testing.T) {
	target := filepath.Join(t.TempDir(), "plugin", "data.json")
	if err := WriteFileAtomic(target, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("content = %q", got)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "currentview-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestIsNote(t *testing.T) {
	for name, want := range map[string]bool{"a.md": true, "B.MD": true, "c.txt": false, "md": false} {
		if got := IsNote(name); got != want {
			t.Errorf("IsNote(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("---\ncurrent view: live\n---\n"))
	if len(a) != 64 {
		t.Fatalf("checksum length = %d, want 64 hex chars", len(a))
	}
	if a != Checksum([]byte("---\ncurrent view: live\n---\n")) {
		t.Error("checksum is not stable")
	}
	if a == Checksum([]byte("---\ncurrent view: reading\n---\n")) {
		t.Error("different content, same checksum")
	}
}
