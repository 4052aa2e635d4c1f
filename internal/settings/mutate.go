package settings

import (
	"fmt"
	"slices"

	"github.com/starford/currentview/internal/apperr"
	"github.com/starford/currentview/internal/pathmatch"
	"github.com/starford/currentview/internal/viewmode"
)

// Target is what a lock pins: a single file or a whole folder.
type Target string

const (
	TargetFile   Target = "file"
	TargetFolder Target = "folder"
)

// ParseTarget validates a lock target name.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetFile, TargetFolder:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrInvalidTarget, s)
}

// Lock pins path to mode. An existing rule for the same normalized path is
// removed and the new rule is appended, so it has the highest priority.
func (s *Settings) Lock(target Target, path string, mode viewmode.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidMode, mode)
	}
	n := pathmatch.Normalize(path)
	if n == "" {
		return fmt.Errorf("%w: empty path", apperr.ErrInvalidRule)
	}
	raw := viewmode.FormatRule(s.CustomFrontmatterKey, mode)
	switch target {
	case TargetFile:
		s.PatternRules = slices.DeleteFunc(s.PatternRules, func(r PatternRule) bool {
			return pathmatch.Normalize(r.Pattern) == n
		})
		s.PatternRules = append(s.PatternRules, PatternRule{Pattern: n, Mode: raw})
	case TargetFolder:
		s.FolderRules = slices.DeleteFunc(s.FolderRules, func(r FolderRule) bool {
			return pathmatch.Normalize(r.Path) == n
		})
		s.FolderRules = append(s.FolderRules, FolderRule{Path: n, Mode: raw})
	default:
		return fmt.Errorf("%w: %q", apperr.ErrInvalidTarget, target)
	}
	return nil
}

// Unlock removes every rule of the target kind for path. It reports whether
// anything was removed.
func (s *Settings) Unlock(target Target, path string) (bool, error) {
	n := pathmatch.Normalize(path)
	switch target {
	case TargetFile:
		before := len(s.PatternRules)
		s.PatternRules = slices.DeleteFunc(s.PatternRules, func(r PatternRule) bool {
			return pathmatch.Normalize(r.Pattern) == n
		})
		return len(s.PatternRules) != before, nil
	case TargetFolder:
		before := len(s.FolderRules)
		s.FolderRules = slices.DeleteFunc(s.FolderRules, func(r FolderRule) bool {
			return pathmatch.Normalize(r.Path) == n
		})
		return len(s.FolderRules) != before, nil
	}
	return false, fmt.Errorf("%w: %q", apperr.ErrInvalidTarget, target)
}

// RenamePath rewrites rules whose normalized path equals oldPath to the
// normalized newPath. It reports whether any rule changed.
func (s *Settings) RenamePath(oldPath, newPath string) bool {
	from, to := pathmatch.Normalize(oldPath), pathmatch.Normalize(newPath)
	if from == "" || from == to {
		return false
	}
	changed := false
	for i, r := range s.FolderRules {
		if pathmatch.Normalize(r.Path) == from {
			s.FolderRules[i].Path = to
			changed = true
		}
	}
	for i, r := range s.PatternRules {
		if pathmatch.Normalize(r.Pattern) == from {
			s.PatternRules[i].Pattern = to
			changed = true
		}
	}
	return changed
}

// ModeOptions lists the rule strings a rule row may hold for the current key.
func (s Settings) ModeOptions() []string {
	out := []string{viewmode.DefaultRule}
	for _, m := range viewmode.Modes {
		out = append(out, viewmode.FormatRule(s.CustomFrontmatterKey, m))
	}
	return out
}

func (s Settings) checkMode(raw string) error {
	if raw == "" || slices.Contains(s.ModeOptions(), raw) {
		return nil
	}
	return fmt.Errorf("%w: mode %q is not one of %q", apperr.ErrInvalidRule, raw, s.ModeOptions())
}

// AddFolderRule appends a folder rule row. Empty rows are allowed.
func (s *Settings) AddFolderRule(r FolderRule) error {
	return s.SetFolderRule(-1, r)
}

// SetFolderRule replaces the folder rule at index, or appends when index is -1.
// A row keeping its stored mode is accepted even if that mode names an older
// frontmatter key.
func (s *Settings) SetFolderRule(index int, r FolderRule) error {
	if index < -1 || index >= len(s.FolderRules) {
		return fmt.Errorf("%w: folder rule %d", apperr.ErrNotFound, index)
	}
	if index == -1 || r.Mode != s.FolderRules[index].Mode {
		if err := s.checkMode(r.Mode); err != nil {
			return err
		}
	}
	if n := pathmatch.Normalize(r.Path); n != "" {
		for i, other := range s.FolderRules {
			if i != index && pathmatch.Normalize(other.Path) == n {
				return fmt.Errorf("%w: folder %q already has a rule", apperr.ErrConflict, r.Path)
			}
		}
	}
	if index == -1 {
		s.FolderRules = append(s.FolderRules, r)
	} else {
		s.FolderRules[index] = r
	}
	return nil
}

// DeleteFolderRule removes the folder rule at index.
func (s *Settings) DeleteFolderRule(index int) error {
	if index < 0 || index >= len(s.FolderRules) {
		return fmt.Errorf("%w: folder rule %d", apperr.ErrNotFound, index)
	}
	s.FolderRules = slices.Delete(s.FolderRules, index, index+1)
	return nil
}

// AddPatternRule appends a pattern rule row. Empty rows are allowed.
func (s *Settings) AddPatternRule(r PatternRule) error {
	return s.SetPatternRule(-1, r)
}

// SetPatternRule replaces the pattern rule at index, or appends when index is -1.
func (s *Settings) SetPatternRule(index int, r PatternRule) error {
	if index < -1 || index >= len(s.PatternRules) {
		return fmt.Errorf("%w: pattern rule %d", apperr.ErrNotFound, index)
	}
	if index == -1 || r.Mode != s.PatternRules[index].Mode {
		if err := s.checkMode(r.Mode); err != nil {
			return err
		}
	}
	if n := pathmatch.Normalize(r.Pattern); n != "" {
		for i, other := range s.PatternRules {
			if i != index && pathmatch.Normalize(other.Pattern) == n {
				return fmt.Errorf("%w: pattern %q already exists", apperr.ErrConflict, r.Pattern)
			}
		}
	}
	if index == -1 {
		s.PatternRules = append(s.PatternRules, r)
	} else {
		s.PatternRules[index] = r
	}
	return nil
}

// DeletePatternRule removes the pattern rule at index.
func (s *Settings) DeletePatternRule(index int) error {
	if index < 0 || index >= len(s.PatternRules) {
		return fmt.Errorf("%w: pattern rule %d", apperr.ErrNotFound, index)
	}
	s.PatternRules = slices.Delete(s.PatternRules, index, index+1)
	return nil
}

// MovePatternRule moves the pattern rule at from to position to, shifting
// the rules in between. Later positions have higher priority.
func (s *Settings) MovePatternRule(from, to int) error {
	n := len(s.PatternRules)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move pattern rule %d -> %d", apperr.ErrNotFound, from, to)
	}
	r := s.PatternRules[from]
	s.PatternRules = slices.Delete(s.PatternRules, from, from+1)
	s.PatternRules = slices.Insert(s.PatternRules, to, r)
	return nil
}

// Flags is the set of scalar settings editable without touching rules.
// Nil fields are left unchanged.
type Flags struct {
	DebounceTimeout       *int    `json:"debounceTimeout,omitempty"`
	CustomFrontmatterKey  *string `json:"customFrontmatterKey,omitempty"`
	IgnoreAlreadyOpen     *bool   `json:"ignoreAlreadyOpen,omitempty"`
	IgnoreForceViewAll    *bool   `json:"ignoreForceViewAll,omitempty"`
	ShowExplorerIcons     *bool   `json:"showExplorerIcons,omitempty"`
	ShowLockNotifications *bool   `json:"showLockNotifications,omitempty"`
}

// ApplyFlags copies the non-nil fields of f into s. Existing rule strings
// keep their old key when the frontmatter key changes.
func (s *Settings) ApplyFlags(f Flags) {
	if f.DebounceTimeout != nil {
		s.DebounceTimeout = *f.DebounceTimeout
	}
	if f.CustomFrontmatterKey != nil {
		s.CustomFrontmatterKey = *f.CustomFrontmatterKey
	}
	if f.IgnoreAlreadyOpen != nil {
		s.IgnoreAlreadyOpen = *f.IgnoreAlreadyOpen
	}
	if f.IgnoreForceViewAll != nil {
		s.IgnoreForceViewAll = *f.IgnoreForceViewAll
	}
	if f.ShowExplorerIcons != nil {
		s.ShowExplorerIcons = *f.ShowExplorerIcons
	}
	if f.ShowLockNotifications != nil {
		s.ShowLockNotifications = *f.ShowLockNotifications
	}
}
