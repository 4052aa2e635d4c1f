package explorer

import (
	"fmt"
	"strings"

	"github.com/starford/currentview/internal/viewmode"
)

// MenuItem is one "Lock <Mode>" entry.
type MenuItem struct {
	Title string        `json:"title"`
	Mode  viewmode.Mode `json:"mode"`
	Icon  string        `json:"icon"`
}

// Menu is the lock menu for a path.
type Menu struct {
	Path   string     `json:"path"`
	Target string     `json:"target"`
	Lock   string     `json:"lock,omitempty"`
	Items  []MenuItem `json:"items"`
	Unlock bool       `json:"unlock"`
}

// BuildMenu lists a lock entry for each mode not already named by the current
// lock, plus Unlock when the path is pinned.
func BuildMenu(src LockSource, path, target string) Menu {
	lock, locked := src.LockOf(path)
	m := Menu{Path: path, Target: target, Items: []MenuItem{}, Unlock: locked}
	if locked {
		m.Lock = lock
	}
	for _, mode := range viewmode.Modes {
		if locked && strings.Contains(lock, string(mode)) {
			continue
		}
		m.Items = append(m.Items, MenuItem{Title: "Lock " + title(string(mode)), Mode: mode, Icon: "lock"})
	}
	return m
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// LockedNotice is the notification shown after a lock.
func LockedNotice(target string, mode viewmode.Mode) string {
	return fmt.Sprintf("%s locked to %s", targetLabel(target), mode)
}

// UnlockedNotice is the notification shown after an unlock.
func UnlockedNotice(target string) string {
	return targetLabel(target) + " unlocked"
}

func targetLabel(target string) string {
	if target == "folder" {
		return "Folder"
	}
	return "File"
}
