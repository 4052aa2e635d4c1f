// Package parser splits YAML frontmatter from Markdown notes.
package parser

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

const delim = "---"

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Title       string
}

// Value returns the frontmatter value stored under key, or nil.
func (r *Result) Value(key string) any {
	if r == nil || r.Frontmatter == nil {
		return nil
	}
	return r.Frontmatter[key]
}

// Parse separates frontmatter and body. Malformed or unterminated
// frontmatter leaves the whole input as body with no metadata.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	r := &Result{Frontmatter: fm, Body: body}
	r.Title = r.deriveTitle()
	return r, nil
}

func splitFrontmatter(data []byte) (map[string]any, string) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}
	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(after), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func (r *Result) deriveTitle() string {
	if s, ok := r.Value("title").(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(r.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
