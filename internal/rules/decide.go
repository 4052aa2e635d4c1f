package rules

import (
	"github.com/starford/currentview/internal/models"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/viewmode"
)

// Outcome is one run of the resolution pipeline for a note.
type Outcome struct {
	Candidates []string          `json:"candidates"`
	Decision   viewmode.Decision `json:"decision"`
}

// Decide collects the candidates for file and resolves them against the
// note's frontmatter. frontmatter may be nil.
func Decide(s settings.Settings, file models.File, frontmatter map[string]any) Outcome {
	candidates := Collect(s, file, RegexpMatcher(file.Basename))
	var value any
	if frontmatter != nil {
		value = frontmatter[s.CustomFrontmatterKey]
	}
	return Outcome{
		Candidates: candidates,
		Decision:   viewmode.Resolve(candidates, value, s.CustomFrontmatterKey),
	}
}
