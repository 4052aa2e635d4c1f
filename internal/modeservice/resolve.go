package modeservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/currentview/internal/models"
	"github.com/starford/currentview/internal/rules"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/sse"
	"github.com/starford/currentview/internal/viewmode"
	"github.com/starford/currentview/internal/workspace"
)

// Resolution is the full answer for a note: the rule strings that matched,
// the decision, and the view state a pane would end up in.
type Resolution struct {
	Path       string              `json:"path"`
	Candidates []string            `json:"candidates"`
	Decision   viewmode.Decision   `json:"decision"`
	State      *viewmode.ViewState `json:"state,omitempty"`

	// HostDefault is set when no mode was decided and the host default
	// view state is written instead.
	HostDefault bool `json:"host_default"`
}

// Resolve runs the pipeline for path without touching any leaf.
func (s *Service) Resolve(_ context.Context, path string) Resolution {
	cfg := s.settings.Snapshot()
	return s.resolve(cfg, models.NewFile(path))
}

func (s *Service) resolve(cfg settings.Settings, f models.File) Resolution {
	out := rules.Decide(cfg, f, s.frontmatter(f.Path))
	res := Resolution{Path: f.Path, Candidates: out.Candidates, Decision: out.Decision}
	if vs, ok := viewmode.Apply(out.Decision.Mode); ok {
		res.State = &vs
		return res
	}
	if !cfg.IgnoreForceViewAll {
		host := s.ws.HostDefault()
		res.State = &host
		res.HostDefault = true
	}
	return res
}

// Leaves lists the open leaves.
func (s *Service) Leaves(_ context.Context) []workspace.Leaf {
	return s.ws.Leaves()
}

// Leaf returns one leaf.
func (s *Service) Leaf(_ context.Context, id string) (workspace.Leaf, error) {
	return s.ws.Get(id)
}

// OpenLeaf shows path in leaf id and schedules its activation after the
// configured debounce timeout.
func (s *Service) OpenLeaf(_ context.Context, id, path string) workspace.Leaf {
	l := s.ws.Open(id, path)
	delay := time.Duration(s.settings.Snapshot().DebounceTimeout) * time.Millisecond
	s.debounce.Call(delay, id)
	return l
}

// CloseLeaf removes a leaf.
func (s *Service) CloseLeaf(_ context.Context, id string) error {
	return s.ws.Close(id)
}

// ResetWorkspace returns every note leaf to the host default view state.
func (s *Service) ResetWorkspace(_ context.Context) int {
	return s.ws.ResetToDefault()
}

// ActivateLeaf applies the resolved mode to leaf id. It is what a debounced
// OpenLeaf eventually runs.
func (s *Service) ActivateLeaf(id string) {
	cfg := s.settings.Snapshot()
	leaf, err := s.ws.Get(id)
	if err != nil {
		s.logger.Debug("activate: leaf gone", slog.String("leaf", id))
		return
	}

	if !leaf.HasNote() {
		if cfg.IgnoreAlreadyOpen {
			s.ws.RefreshOpened()
		}
		return
	}
	if cfg.IgnoreAlreadyOpen && s.ws.AlreadyOpen(leaf.Basename) {
		s.ws.RefreshOpened()
		return
	}

	res := s.resolve(cfg, leaf.File())
	if res.State == nil {
		return
	}
	if err := s.ws.SetState(id, *res.State); err != nil {
		return
	}
	if res.HostDefault || (res.Decision.Source == viewmode.SourceFrontmatter && cfg.IgnoreAlreadyOpen) {
		s.ws.RefreshOpened()
	}

	s.logger.Debug("activate: applied",
		slog.String("leaf", id),
		slog.String("path", leaf.Path),
		slog.String("previous", string(viewmode.ModeOf(leaf.State))),
		slog.String("mode", string(viewmode.ModeOf(*res.State))),
		slog.String("source", string(res.Decision.Source)))
	s.events.Publish(sse.Event{Type: sse.TypeModeApplied, Data: map[string]any{
		"leaf":         id,
		"path":         leaf.Path,
		"mode":         res.Decision.Mode,
		"source":       res.Decision.Source,
		"state":        res.State,
		"host_default": res.HostDefault,
	}})
}
