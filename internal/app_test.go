package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/currentview/internal/viewmode"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Vault.Path = filepath.Join(dir, "vault")
	cfg.SQLite.Path = filepath.Join(dir, "index.db")
	return cfg
}

func TestOpen_RequiresConfig(t *testing.T) {
	if _, err := Open(context.Background(), nil); err == nil {
		t.Fatal("Open without config should fail")
	}
}

func TestOpen_MigratesAndResolves(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Join(cfg.Vault.Path, "journal"), 0o755); err != nil {
		t.Fatal(err)
	}
	note := filepath.Join(cfg.Vault.Path, "journal", "day.md")
	if err := os.WriteFile(note, []byte("---\ncurrent view: source\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	legacy := `{"customFrontmatterKey":"current view","explicitFileRules":[{"path":"journal","mode":"current view: reading"}]}`
	settingsFile := cfg.Settings.File(cfg.Vault.Path)
	if err := os.MkdirAll(filepath.Dir(settingsFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(settingsFile, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	app, err := Open(context.Background(), []Option{WithConfig(cfg), WithLogOutput(&logs)})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()

	if !app.Migrated {
		t.Error("legacy rules should be migrated")
	}
	rules := app.Settings.Snapshot().FolderRules
	if last := rules[len(rules)-1]; last.Path != "journal" || last.Mode != "current view: reading" {
		t.Errorf("folder rules = %+v", rules)
	}

	res := app.Service.Resolve(context.Background(), "journal/day.md")
	if res.Decision.Mode != viewmode.Reading {
		t.Errorf("decision = %+v", res.Decision)
	}

	fm, err := app.DB.Frontmatter("journal/day.md")
	if err != nil {
		t.Fatalf("note should be indexed at startup: %v", err)
	}
	if fm["current view"] != "source" {
		t.Errorf("frontmatter = %v", fm)
	}
	if logs.Len() == 0 {
		t.Error("expected startup logs on the configured writer")
	}
}

func TestOpen_NothingToMigrate(t *testing.T) {
	cfg := testConfig(t)
	app, err := Open(context.Background(), []Option{WithConfig(cfg), WithLogOutput(&bytes.Buffer{})})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()

	if app.Migrated {
		t.Error("fresh settings have nothing to migrate")
	}
	if got := app.Settings.Snapshot().CustomFrontmatterKey; got != "current view" {
		t.Errorf("key = %q", got)
	}
}
