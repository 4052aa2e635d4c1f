// Package explorer turns lock strings into file-explorer badges and lock
// menu entries. It knows nothing about how locks are stored: callers plug in
// a LockSource.
package explorer

import (
	"strings"

	"github.com/starford/currentview/internal/models"
	"github.com/starford/currentview/internal/viewmode"
)

// LockSource answers which rule string pins a vault path.
type LockSource interface {
	LockOf(path string) (string, bool)
}

// LockSourceFunc adapts a function to LockSource.
type LockSourceFunc func(path string) (string, bool)

// LockOf calls f.
func (f LockSourceFunc) LockOf(path string) (string, bool) {
	return f(path)
}

// Kind is the badge category derived from a lock string.
type Kind string

const (
	KindReading Kind = "reading"
	KindLive    Kind = "live"
	KindSource  Kind = "source"
	KindUnknown Kind = "unknown"
)

var icons = map[Kind]string{
	KindReading: "book-open",
	KindLive:    "pen-tool",
	KindSource:  "code",
}

// KindOf classifies a lock string by the mode name it mentions. Reading is
// checked before live and live before source.
func KindOf(lock string) Kind {
	switch {
	case strings.Contains(lock, string(viewmode.Reading)):
		return KindReading
	case strings.Contains(lock, string(viewmode.Live)):
		return KindLive
	case strings.Contains(lock, string(viewmode.Source)):
		return KindSource
	}
	return KindUnknown
}

// Icon returns the icon name for a lock string.
func Icon(lock string) string {
	if icon, ok := icons[KindOf(lock)]; ok {
		return icon
	}
	return "lock"
}

// Badge decorates one explorer entry.
type Badge struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Lock  string `json:"lock"`
	Kind  Kind   `json:"kind"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// NewBadge builds the badge for an entry pinned by lock.
func NewBadge(e models.Entry, lock string) Badge {
	return Badge{
		Path:  e.Path,
		IsDir: e.IsDir,
		Lock:  lock,
		Kind:  KindOf(lock),
		Icon:  Icon(lock),
		Label: "Locked " + lock,
	}
}

// BadgeFor builds the badge for a single path, or false when nothing pins it.
func BadgeFor(src LockSource, e models.Entry) (Badge, bool) {
	lock, ok := src.LockOf(e.Path)
	if !ok {
		return Badge{}, false
	}
	return NewBadge(e, lock), true
}

// Decorate returns badges for the pinned entries. With show false every
// badge is cleared and the result is empty.
func Decorate(src LockSource, entries []models.Entry, show bool) []Badge {
	out := []Badge{}
	if !show {
		return out
	}
	for _, e := range entries {
		if b, ok := BadgeFor(src, e); ok {
			out = append(out, b)
		}
	}
	return out
}
