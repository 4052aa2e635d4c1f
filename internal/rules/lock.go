package rules

import (
	"github.com/starford/currentview/internal/pathmatch"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/viewmode"
)

// LookupLock reports the rule string that pins path, for display.
//
// An exact pattern rule wins over any folder; among exact duplicates the
// later one wins, as it does during resolution. Otherwise the deepest
// containing folder rule applies. With no rule, a valid frontmatter value is
// reported as "<key>: <mode>".
func LookupLock(s settings.Settings, path string, metadataValue any) (string, bool) {
	n := pathmatch.Normalize(path)
	if n != "" {
		for i := len(s.PatternRules) - 1; i >= 0; i-- {
			r := s.PatternRules[i]
			if r.Active() && pathmatch.Normalize(r.Pattern) == n {
				return r.Mode, true
			}
		}
	}

	best, bestLen := "", -1
	for _, r := range s.FolderRules {
		if !r.Active() || !pathmatch.IsWithin(path, r.Path) {
			continue
		}
		if l := len(pathmatch.Normalize(r.Path)); l >= bestLen {
			best, bestLen = r.Mode, l
		}
	}
	if bestLen >= 0 {
		return best, true
	}

	if m, ok := viewmode.FromMetadata(metadataValue); ok {
		return viewmode.FormatRule(s.CustomFrontmatterKey, m), true
	}
	return "", false
}
