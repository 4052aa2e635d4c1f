package modeservice

import (
	"context"

	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/viewmode"
)

// FolderRules returns the folder rule rows in stored order.
func (s *Service) FolderRules(_ context.Context) []settings.FolderRule {
	return s.settings.Snapshot().FolderRules
}

// PatternRules returns the pattern rule rows in priority order.
func (s *Service) PatternRules(_ context.Context) []settings.PatternRule {
	return s.settings.Snapshot().PatternRules
}

// AddFolderRule appends a folder rule. A row without a mode gets "default".
func (s *Service) AddFolderRule(ctx context.Context, r settings.FolderRule) ([]settings.FolderRule, error) {
	if r.Mode == "" {
		r.Mode = viewmode.DefaultRule
	}
	return s.editFolders(ctx, func(cur *settings.Settings) error { return cur.AddFolderRule(r) })
}

// SetFolderRule replaces the folder rule at index.
func (s *Service) SetFolderRule(ctx context.Context, index int, r settings.FolderRule) ([]settings.FolderRule, error) {
	return s.editFolders(ctx, func(cur *settings.Settings) error { return cur.SetFolderRule(index, r) })
}

// DeleteFolderRule removes the folder rule at index.
func (s *Service) DeleteFolderRule(ctx context.Context, index int) ([]settings.FolderRule, error) {
	return s.editFolders(ctx, func(cur *settings.Settings) error { return cur.DeleteFolderRule(index) })
}

// AddPatternRule appends a pattern rule. A row without a mode gets "default".
func (s *Service) AddPatternRule(ctx context.Context, r settings.PatternRule) ([]settings.PatternRule, error) {
	if r.Mode == "" {
		r.Mode = viewmode.DefaultRule
	}
	return s.editPatterns(ctx, func(cur *settings.Settings) error { return cur.AddPatternRule(r) })
}

// SetPatternRule replaces the pattern rule at index.
func (s *Service) SetPatternRule(ctx context.Context, index int, r settings.PatternRule) ([]settings.PatternRule, error) {
	return s.editPatterns(ctx, func(cur *settings.Settings) error { return cur.SetPatternRule(index, r) })
}

// DeletePatternRule removes the pattern rule at index.
func (s *Service) DeletePatternRule(ctx context.Context, index int) ([]settings.PatternRule, error) {
	return s.editPatterns(ctx, func(cur *settings.Settings) error { return cur.DeletePatternRule(index) })
}

// MovePatternRule changes the priority of a pattern rule.
func (s *Service) MovePatternRule(ctx context.Context, from, to int) ([]settings.PatternRule, error) {
	return s.editPatterns(ctx, func(cur *settings.Settings) error { return cur.MovePatternRule(from, to) })
}

func (s *Service) editFolders(_ context.Context, fn func(*settings.Settings) error) ([]settings.FolderRule, error) {
	next, err := s.settings.Update(fn)
	if err != nil {
		return nil, err
	}
	s.refreshExplorer()
	return next.FolderRules, nil
}

func (s *Service) editPatterns(_ context.Context, fn func(*settings.Settings) error) ([]settings.PatternRule, error) {
	next, err := s.settings.Update(fn)
	if err != nil {
		return nil, err
	}
	s.refreshExplorer()
	return next.PatternRules, nil
}
