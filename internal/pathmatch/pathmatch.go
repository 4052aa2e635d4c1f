// Package pathmatch normalizes vault paths and answers folder containment.
package pathmatch

import "strings"

// Normalize returns the canonical comparison form of a vault path: trimmed,
// forward slashes only, no leading or trailing slash, lowercase.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	// Stripping slashes can expose whitespace ("/ a /") and vice versa.
	for {
		t := strings.TrimSpace(strings.Trim(p, "/"))
		if t == p {
			break
		}
		p = t
	}
	return strings.ToLower(p)
}

// IsWithin reports whether path equals maybeParent or lies below it.
// An empty parent matches nothing.
func IsWithin(path, maybeParent string) bool {
	parent := Normalize(maybeParent)
	if parent == "" {
		return false
	}
	child := Normalize(path)
	if child == parent {
		return true
	}
	return strings.HasPrefix(child, parent+"/")
}

// Equal reports whether two paths are the same after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Base returns the last element of a normalized path.
func Base(p string) string {
	n := Normalize(p)
	if i := strings.LastIndex(n, "/"); i >= 0 {
		return n[i+1:]
	}
	return n
}
