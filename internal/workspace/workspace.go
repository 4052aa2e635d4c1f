// Package workspace models the open panes (leaves) of the host editor and the
// view state each one shows.
package workspace

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/starford/currentview/internal/apperr"
	"github.com/starford/currentview/internal/models"
	"github.com/starford/currentview/internal/viewmode"
)

// Leaf is one pane. A leaf with an empty Path shows no note.
type Leaf struct {
	ID       string             `json:"id"`
	Path     string             `json:"path"`
	Basename string             `json:"basename"`
	State    viewmode.ViewState `json:"state"`
}

// HasNote reports whether the leaf shows a note.
func (l Leaf) HasNote() bool {
	return l.Path != ""
}

// File returns the note shown in the leaf.
func (l Leaf) File() models.File {
	return models.NewFile(l.Path)
}

// Workspace is the set of open leaves plus the snapshot of open note
// basenames used to skip notes that were already open.
type Workspace struct {
	mu     sync.Mutex
	leaves map[string]*Leaf
	opened []string
	host   viewmode.ViewState
}

// New returns an empty workspace whose new leaves start in host.
func New(host viewmode.ViewState) *Workspace {
	return &Workspace{leaves: make(map[string]*Leaf), host: host}
}

// HostDefault returns the view state the host would use on its own.
func (w *Workspace) HostDefault() viewmode.ViewState {
	return w.host
}

// Open shows path in leaf id, creating the leaf when needed. A new leaf
// starts in the host default state; an existing one keeps its state.
func (w *Workspace) Open(id, path string) Leaf {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.leaves[id]
	if !ok {
		l = &Leaf{ID: id, State: w.host}
		w.leaves[id] = l
	}
	f := models.NewFile(path)
	l.Path, l.Basename = f.Path, f.Basename
	return *l
}

// Get returns a copy of leaf id.
func (w *Workspace) Get(id string) (Leaf, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.leaves[id]
	if !ok {
		return Leaf{}, fmt.Errorf("workspace: leaf %q: %w", id, apperr.ErrNotFound)
	}
	return *l, nil
}

// Close removes leaf id.
func (w *Workspace) Close(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.leaves[id]; !ok {
		return fmt.Errorf("workspace: leaf %q: %w", id, apperr.ErrNotFound)
	}
	delete(w.leaves, id)
	return nil
}

// Leaves returns copies of all leaves ordered by ID.
func (w *Workspace) Leaves() []Leaf {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Leaf, 0, len(w.leaves))
	for _, l := range w.leaves {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetState writes the view state of leaf id.
func (w *Workspace) SetState(id string, vs viewmode.ViewState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.leaves[id]
	if !ok {
		return fmt.Errorf("workspace: leaf %q: %w", id, apperr.ErrNotFound)
	}
	l.State = vs
	return nil
}

// RefreshOpened snapshots the basenames of every leaf showing a note.
func (w *Workspace) RefreshOpened() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opened = w.opened[:0]
	for _, l := range w.leaves {
		if l.HasNote() {
			w.opened = append(w.opened, l.Basename)
		}
	}
}

// AlreadyOpen reports whether basename was open at the last snapshot.
func (w *Workspace) AlreadyOpen(basename string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Contains(w.opened, basename)
}

// ResetToDefault puts every leaf showing a note back to the host default
// and clears the snapshot. It returns the number of leaves reset.
func (w *Workspace) ResetToDefault() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, l := range w.leaves {
		if l.HasNote() {
			l.State = w.host
			n++
		}
	}
	w.opened = nil
	return n
}

// Rename updates leaves showing oldPath, or a note under the oldPath folder.
func (w *Workspace) Rename(oldPath, newPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, l := range w.leaves {
		var p string
		switch {
		case l.Path == oldPath:
			p = newPath
		case strings.HasPrefix(l.Path, oldPath+"/"):
			p = newPath + strings.TrimPrefix(l.Path, oldPath)
		default:
			continue
		}
		f := models.NewFile(p)
		l.Path, l.Basename = f.Path, f.Basename
	}
}
