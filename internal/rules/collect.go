// Package rules gathers the rule strings that apply to a note and answers
// which rule pins a given path.
package rules

import (
	"regexp"
	"sort"

	"github.com/starford/currentview/internal/models"
	"github.com/starford/currentview/internal/pathmatch"
	"github.com/starford/currentview/internal/settings"
)

// BasenameMatcher reports whether pattern matches the basename of the note
// being collected for.
type BasenameMatcher func(pattern string) bool

// RegexpMatcher returns a BasenameMatcher that treats each pattern as a
// regular expression searched anywhere in basename. Invalid expressions
// never match.
func RegexpMatcher(basename string) BasenameMatcher {
	return func(pattern string) bool {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(basename)
	}
}

// Collect returns the candidate rule strings for file in priority order
// (lowest first): containing folder rules from shallowest to deepest, then
// matching pattern rules in stored order.
func Collect(s settings.Settings, file models.File, match BasenameMatcher) []string {
	var folders []settings.FolderRule
	for _, r := range s.FolderRules {
		if r.Active() && pathmatch.IsWithin(file.Path, r.Path) {
			folders = append(folders, r)
		}
	}
	sort.SliceStable(folders, func(i, j int) bool {
		return len(pathmatch.Normalize(folders[i].Path)) < len(pathmatch.Normalize(folders[j].Path))
	})

	out := make([]string, 0, len(folders))
	for _, r := range folders {
		out = append(out, r.Mode)
	}

	filePath := pathmatch.Normalize(file.Path)
	for _, r := range s.PatternRules {
		if !r.Active() {
			continue
		}
		if pathmatch.Normalize(r.Pattern) == filePath || (match != nil && match(r.Pattern)) {
			out = append(out, r.Mode)
		}
	}
	return out
}
