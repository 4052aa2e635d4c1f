package modeservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/starford/currentview/internal/apperr"
	"github.com/starford/currentview/internal/explorer"
	"github.com/starford/currentview/internal/models"
	"github.com/starford/currentview/internal/pathmatch"
	"github.com/starford/currentview/internal/rules"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/sse"
	"github.com/starford/currentview/internal/storage"
	"github.com/starford/currentview/internal/viewmode"
)

// LockInfo describes what pins a path.
type LockInfo struct {
	Path   string          `json:"path"`
	Lock   string          `json:"lock,omitempty"`
	Locked bool            `json:"locked"`
	Badge  *explorer.Badge `json:"badge,omitempty"`
}

// LockResult is returned by Lock and Unlock.
type LockResult struct {
	Target  settings.Target `json:"target"`
	Path    string          `json:"path"`
	Rule    string          `json:"rule,omitempty"`
	Changed bool            `json:"changed"`
	Notice  string          `json:"notice,omitempty"`
}

// LockOf implements explorer.LockSource over the current settings.
func (s *Service) LockOf(path string) (string, bool) {
	cfg := s.settings.Snapshot()
	var value any
	if fm := s.frontmatter(path); fm != nil {
		value = fm[cfg.CustomFrontmatterKey]
	}
	return rules.LookupLock(cfg, path, value)
}

var _ explorer.LockSource = (*Service)(nil)

// LookupLock reports the rule string pinning path.
func (s *Service) LookupLock(_ context.Context, path string) LockInfo {
	info := LockInfo{Path: path}
	lock, ok := s.LockOf(path)
	if !ok {
		return info
	}
	info.Lock, info.Locked = lock, true
	b := explorer.NewBadge(models.Entry{Path: path, IsDir: s.store.IsDir(path)}, lock)
	info.Badge = &b
	return info
}

// TargetOf reports whether path is locked as a folder or as a file.
func (s *Service) TargetOf(path string) settings.Target {
	if s.store.IsDir(path) {
		return settings.TargetFolder
	}
	return settings.TargetFile
}

// LockMenu returns the lock menu entries for path.
func (s *Service) LockMenu(_ context.Context, path string, target settings.Target) explorer.Menu {
	return explorer.BuildMenu(s, path, string(target))
}

// Lock pins path to mode and persists the change.
func (s *Service) Lock(_ context.Context, target settings.Target, path string, mode viewmode.Mode) (LockResult, error) {
	var rule string
	next, err := s.settings.Update(func(cur *settings.Settings) error {
		if err := cur.Lock(target, path, mode); err != nil {
			return err
		}
		rule = viewmode.FormatRule(cur.CustomFrontmatterKey, mode)
		return nil
	})
	if err != nil {
		return LockResult{}, err
	}

	res := LockResult{Target: target, Path: pathmatch.Normalize(path), Rule: rule, Changed: true}
	s.events.PublishLockChanged(sse.LockChange{Target: string(target), Path: res.Path, Rule: rule, Locked: true})
	if next.ShowLockNotifications {
		res.Notice = explorer.LockedNotice(string(target), mode)
		s.events.PublishNotice(res.Notice)
	}
	return res, nil
}

// Unlock removes the lock of the given kind from path.
func (s *Service) Unlock(_ context.Context, target settings.Target, path string) (LockResult, error) {
	var removed bool
	next, err := s.settings.Update(func(cur *settings.Settings) error {
		var err error
		removed, err = cur.Unlock(target, path)
		return err
	})
	if err != nil {
		return LockResult{}, err
	}

	res := LockResult{Target: target, Path: pathmatch.Normalize(path), Changed: removed}
	if !removed {
		return res, nil
	}
	s.events.PublishLockChanged(sse.LockChange{Target: string(target), Path: res.Path, Locked: false})
	if next.ShowLockNotifications {
		res.Notice = explorer.UnlockedNotice(string(target))
		s.events.PublishNotice(res.Notice)
	}
	return res, nil
}

// Explorer returns badges for every note and folder under dir. A dir that
// does not exist fails even when explorer icons are off.
func (s *Service) Explorer(_ context.Context, dir string) ([]explorer.Badge, error) {
	entries, err := s.store.Tree(dir)
	if err != nil {
		return nil, vaultError("explorer "+dir, err)
	}
	if !s.settings.Snapshot().ShowExplorerIcons {
		return []explorer.Badge{}, nil
	}
	return explorer.Decorate(s, entries, true), nil
}

// MoveNote renames a note or folder in the vault and carries its rules and
// open leaves along.
func (s *Service) MoveNote(_ context.Context, from, to string) error {
	if err := s.store.Move(from, to); err != nil {
		return vaultError("move "+from+" to "+to, err)
	}
	s.ws.Rename(from, to)

	if probe := s.settings.Snapshot(); !probe.RenamePath(from, to) {
		return nil
	}
	if _, err := s.settings.Update(func(cur *settings.Settings) error {
		cur.RenamePath(from, to)
		return nil
	}); err != nil {
		return fmt.Errorf("move: rewrite rules: %w", err)
	}
	s.refreshExplorer()
	return nil
}

// vaultError translates storage failures into apperr sentinels.
func vaultError(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%s: %w", op, apperr.ErrAlreadyExists)
	case errors.Is(err, storage.ErrOutsideVault):
		return fmt.Errorf("%s: %w: %w", op, apperr.ErrInvalidTarget, err)
	}
	return err
}

func (s *Service) refreshExplorer() {
	s.events.Publish(sse.Event{Type: sse.TypeExplorerUpdated, Data: map[string]string{}})
}
