// Package settings holds the view-mode rule store: folder rules, pattern
// rules, the frontmatter key and behavioural flags, plus their persistence.
package settings

import (
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/currentview/internal/pathmatch"
)

// FolderRule applies Mode to every note under Path.
type FolderRule struct {
	Path string `json:"path" yaml:"path"`
	Mode string `json:"mode" yaml:"mode"`
}

// Active reports whether the rule takes part in matching.
func (r FolderRule) Active() bool {
	return r.Path != "" && r.Mode != ""
}

// PatternRule applies Mode to a note whose normalized path equals Pattern or
// whose basename matches Pattern as a regular expression.
type PatternRule struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Mode    string `json:"mode" yaml:"mode"`
}

// Active reports whether the rule takes part in matching.
func (r PatternRule) Active() bool {
	return r.Pattern != "" && r.Mode != ""
}

// Settings is the persisted record. Order of PatternRules is priority
// (later wins); FolderRules priority comes from path depth.
type Settings struct {
	DebounceTimeout       int           `json:"debounceTimeout" yaml:"debounceTimeout"`
	CustomFrontmatterKey  string        `json:"customFrontmatterKey" yaml:"customFrontmatterKey"`
	FolderRules           []FolderRule  `json:"folderRules" yaml:"folderRules"`
	PatternRules          []PatternRule `json:"patternRules" yaml:"patternRules"`
	IgnoreAlreadyOpen     bool          `json:"ignoreAlreadyOpen" yaml:"ignoreAlreadyOpen"`
	IgnoreForceViewAll    bool          `json:"ignoreForceViewAll" yaml:"ignoreForceViewAll"`
	ShowExplorerIcons     bool          `json:"showExplorerIcons" yaml:"showExplorerIcons"`
	ShowLockNotifications bool          `json:"showLockNotifications" yaml:"showLockNotifications"`

	// ExplicitFileRules is the deprecated per-file rule list. Emptied by Migrate.
	ExplicitFileRules []FolderRule `json:"explicitFileRules,omitempty" yaml:"explicitFileRules,omitempty"`
	// FilePatterns is the previous name of PatternRules. Emptied by Migrate.
	FilePatterns []PatternRule `json:"filePatterns,omitempty" yaml:"filePatterns,omitempty"`
}

// Default frontmatter key and debounce window.
const (
	DefaultFrontmatterKey  = "current view"
	DefaultDebounceTimeout = 300
)

// Default returns the settings used when nothing is persisted yet.
func Default() Settings {
	return Settings{
		DebounceTimeout:       DefaultDebounceTimeout,
		CustomFrontmatterKey:  DefaultFrontmatterKey,
		FolderRules:           []FolderRule{{}},
		PatternRules:          []PatternRule{{}},
		ShowExplorerIcons:     true,
		ShowLockNotifications: true,
	}
}

// Clone returns a deep copy so callers can hold an immutable snapshot.
func (s Settings) Clone() Settings {
	out := s
	out.FolderRules = slices.Clone(s.FolderRules)
	out.PatternRules = slices.Clone(s.PatternRules)
	out.ExplicitFileRules = slices.Clone(s.ExplicitFileRules)
	out.FilePatterns = slices.Clone(s.FilePatterns)
	return out
}

// Validate validates the scalar fields. Rule contents are not validated here:
// the resolver tolerates any rule string.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.DebounceTimeout, validation.Min(0)),
		validation.Field(&s.CustomFrontmatterKey, validation.Required),
	)
}

// validateStored checks a record read back from disk. A blank frontmatter key
// is tolerated there: it is what the editor saves while the field is cleared.
func (s *Settings) validateStored() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.DebounceTimeout, validation.Min(0)),
	)
}

// FolderIndex returns the index of the last folder rule whose normalized path
// equals p, or -1.
func (s Settings) FolderIndex(p string) int {
	n := pathmatch.Normalize(p)
	for i := len(s.FolderRules) - 1; i >= 0; i-- {
		if pathmatch.Normalize(s.FolderRules[i].Path) == n {
			return i
		}
	}
	return -1
}

// PatternIndex returns the index of the last pattern rule whose normalized
// pattern equals p, or -1.
func (s Settings) PatternIndex(p string) int {
	n := pathmatch.Normalize(p)
	for i := len(s.PatternRules) - 1; i >= 0; i-- {
		if pathmatch.Normalize(s.PatternRules[i].Pattern) == n {
			return i
		}
	}
	return -1
}
