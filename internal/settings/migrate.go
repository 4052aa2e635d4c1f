package settings

import (
	"strings"

	"github.com/starford/currentview/internal/pathmatch"
)

// FolderChecker reports whether a vault path is an existing folder.
type FolderChecker func(path string) bool

// Migrate moves legacy entries into the current shape:
//   - FilePatterns are appended to PatternRules
//   - ExplicitFileRules that look like folders (no '.' in the basename, or an
//     existing folder per isFolder) and carry a mode go to FolderRules
//   - all other ExplicitFileRules go to PatternRules as exact-path entries
//
// Entries whose normalized path is already present are dropped. Both legacy
// lists end up empty. Migrate reports whether s changed; running it again on
// the result reports false.
func Migrate(s *Settings, isFolder FolderChecker) bool {
	changed := false

	if len(s.FilePatterns) > 0 {
		for _, r := range s.FilePatterns {
			if n := pathmatch.Normalize(r.Pattern); n != "" && s.PatternIndex(n) >= 0 {
				continue
			}
			s.PatternRules = append(s.PatternRules, r)
		}
		s.FilePatterns = nil
		changed = true
	}

	if len(s.ExplicitFileRules) > 0 {
		for _, r := range s.ExplicitFileRules {
			n := pathmatch.Normalize(r.Path)
			if n == "" {
				continue
			}
			if r.Mode != "" && looksLikeFolder(r.Path, n, isFolder) {
				if s.FolderIndex(n) < 0 {
					s.FolderRules = append(s.FolderRules, FolderRule{Path: n, Mode: r.Mode})
				}
				continue
			}
			if s.PatternIndex(n) < 0 {
				s.PatternRules = append(s.PatternRules, PatternRule{Pattern: n, Mode: r.Mode})
			}
		}
		s.ExplicitFileRules = nil
		changed = true
	}

	return changed
}

func looksLikeFolder(raw, normalized string, isFolder FolderChecker) bool {
	if !strings.Contains(pathmatch.Base(normalized), ".") {
		return true
	}
	if isFolder == nil {
		return false
	}
	return isFolder(raw) || isFolder(normalized)
}
