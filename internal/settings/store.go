package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/currentview/internal/storage"
)

// Persister loads and saves the encoded settings record.
type Persister interface {
	// Load returns the stored bytes, or an error wrapping fs.ErrNotExist
	// when nothing was stored yet.
	Load() ([]byte, error)
	// Save replaces the stored bytes.
	Save(data []byte) error
}

// FilePersister stores settings in a single file, written atomically.
type FilePersister struct {
	Path string
}

// Load reads the settings file.
func (p FilePersister) Load() ([]byte, error) {
	return os.ReadFile(p.Path)
}

// Save atomically replaces the settings file.
func (p FilePersister) Save(data []byte) error {
	return storage.WriteFileAtomic(p.Path, data)
}

// Store owns the current settings. Readers get deep-copied snapshots;
// writers go through Update, which is serialized and persists before the
// new value becomes visible.
type Store struct {
	mu        sync.RWMutex
	cur       Settings
	persister Persister
	format    Format
	logger    *slog.Logger
}

// Open loads settings from p, filling missing fields with defaults.
func Open(p Persister, f Format, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cur := Default()
	data, err := p.Load()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("settings: no stored settings, using defaults")
	case err != nil:
		return nil, fmt.Errorf("settings: load: %w", err)
	default:
		if cur, err = Decode(data, f); err != nil {
			return nil, err
		}
	}
	if err := cur.validateStored(); err != nil {
		return nil, fmt.Errorf("settings: validate: %w", err)
	}
	if cur.CustomFrontmatterKey == "" {
		logger.Warn("settings: frontmatter key is empty, no rule or frontmatter value will match")
	}
	return &Store{cur: cur, persister: p, format: f, logger: logger}, nil
}

// OpenFile opens a store backed by the file at path. The encoding follows
// the file extension.
func OpenFile(path string, logger *slog.Logger) (*Store, error) {
	return Open(FilePersister{Path: path}, FormatFor(path), logger)
}

// Snapshot returns an independent copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Clone()
}

// Update applies fn to a copy of the current settings, validates and
// persists the result, then makes it current. If any step fails the current
// settings are unchanged.
func (s *Store) Update(fn func(*Settings) error) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Clone()
	if err := fn(&next); err != nil {
		return s.cur.Clone(), err
	}
	if err := next.Validate(); err != nil {
		return s.cur.Clone(), fmt.Errorf("settings: validate: %w", err)
	}
	if err := s.save(next); err != nil {
		return s.cur.Clone(), err
	}
	s.cur = next
	return next.Clone(), nil
}

// Migrate runs the legacy migration and persists once if it changed anything.
func (s *Store) Migrate(isFolder FolderChecker) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Clone()
	if !Migrate(&next, isFolder) {
		return false, nil
	}
	if err := s.save(next); err != nil {
		return false, err
	}
	s.cur = next
	s.logger.Info("settings: migrated legacy rules",
		slog.Int("folder_rules", len(next.FolderRules)),
		slog.Int("pattern_rules", len(next.PatternRules)))
	return true, nil
}

func (s *Store) save(v Settings) error {
	data, err := Encode(v, s.format)
	if err != nil {
		return err
	}
	if err := s.persister.Save(data); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}
