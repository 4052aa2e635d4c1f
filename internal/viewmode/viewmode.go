// Package viewmode resolves a note's view mode from candidate rule strings and
// a frontmatter fallback, and maps the result onto pane view state.
package viewmode

import (
	"fmt"
	"strings"
)

// Mode is the mode a note is displayed or edited in.
type Mode string

// Supported modes. No other value is valid.
const (
	Reading Mode = "reading"
	Source  Mode = "source"
	Live    Mode = "live"
)

// Modes lists every valid mode in display order.
var Modes = []Mode{Reading, Source, Live}

// DefaultRule is the rule string that clears any earlier rule match.
const DefaultRule = "default"

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case Reading, Source, Live:
		return true
	}
	return false
}

// ParseMode trims s and returns it as a Mode when valid.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.TrimSpace(s))
	if !m.Valid() {
		return "", false
	}
	return m, true
}

// Origin names where a decision came from.
type Origin string

const (
	SourceRule        Origin = "rule"
	SourceFrontmatter Origin = "frontmatter"
)

// Decision is the outcome of a resolution. The zero value means no mode.
type Decision struct {
	Mode   Mode   `json:"mode"`
	Source Origin `json:"source"`
}

// Resolved reports whether the decision carries a mode.
func (d Decision) Resolved() bool {
	return d.Mode != ""
}

// FormatRule builds the rule string "<key>: <mode>".
func FormatRule(key string, m Mode) string {
	return fmt.Sprintf("%s: %s", key, m)
}

// SplitRule splits a rule string once on ':' and trims both halves.
// A string without ':' yields the whole trimmed string as key.
func SplitRule(raw string) (key, value string) {
	k, v, _ := strings.Cut(raw, ":")
	return strings.TrimSpace(k), strings.TrimSpace(v)
}

// IsDefault reports whether raw is the reset sentinel.
func IsDefault(raw string) bool {
	key, _ := SplitRule(raw)
	return key == DefaultRule
}

// ParseRule returns the mode carried by raw when its key equals metadataKey
// and its value is a valid mode.
func ParseRule(raw, metadataKey string) (Mode, bool) {
	key, value := SplitRule(raw)
	if key == DefaultRule || key != metadataKey {
		return "", false
	}
	return ParseMode(value)
}

// FromMetadata interprets a frontmatter value. Only strings that trim to a
// valid mode count; anything else is absent.
func FromMetadata(v any) (Mode, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return ParseMode(s)
}

// Resolve folds candidates left to right. A "default" entry clears the running
// decision, a "<metadataKey>: <mode>" entry replaces it, and anything else is
// ignored. When no rule decision survives, a valid metadataValue is used.
func Resolve(candidates []string, metadataValue any, metadataKey string) Decision {
	var state Decision
	for _, raw := range candidates {
		if IsDefault(raw) {
			state = Decision{}
			continue
		}
		if m, ok := ParseRule(raw, metadataKey); ok {
			state = Decision{Mode: m, Source: SourceRule}
		}
	}
	if state.Resolved() {
		return state
	}
	if m, ok := FromMetadata(metadataValue); ok {
		return Decision{Mode: m, Source: SourceFrontmatter}
	}
	return Decision{}
}
