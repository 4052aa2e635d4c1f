// Package modeservice coordinates the settings store, note metadata, the
// resolution engine and the workspace. API handlers, MCP tools and the CLI
// all go through it.
package modeservice

import (
	"context"
	"log/slog"

	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/sse"
	"github.com/starford/currentview/internal/storage"
	"github.com/starford/currentview/internal/workspace"
)

// Publisher receives service events. *sse.Broker implements it.
type Publisher interface {
	Publish(event sse.Event)
	PublishLockChanged(c sse.LockChange)
	PublishNotice(text string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event)                 {}
func (nopPublisher) PublishLockChanged(sse.LockChange) {}
func (nopPublisher) PublishNotice(string)              {}

// Service is the view-mode application service.
type Service struct {
	settings *settings.Store
	store    storage.Provider
	meta     MetadataProvider
	ws       *workspace.Workspace
	events   Publisher
	logger   *slog.Logger
	debounce *workspace.Debouncer
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher routes events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a service. meta may be nil, in which case frontmatter is
// always parsed from storage.
func New(st *settings.Store, store storage.Provider, meta MetadataProvider, ws *workspace.Workspace, opts ...Option) *Service {
	s := &Service{
		settings: st,
		store:    store,
		meta:     meta,
		ws:       ws,
		events:   nopPublisher{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.debounce = workspace.NewDebouncer(s.ActivateLeaf)
	return s
}

// Close stops pending activations.
func (s *Service) Close() {
	s.debounce.Stop()
}

// Settings returns the current settings snapshot.
func (s *Service) Settings(_ context.Context) settings.Settings {
	return s.settings.Snapshot()
}

// UpdateFlags changes scalar settings. Rules are untouched.
func (s *Service) UpdateFlags(_ context.Context, f settings.Flags) (settings.Settings, error) {
	return s.settings.Update(func(cur *settings.Settings) error {
		cur.ApplyFlags(f)
		return nil
	})
}

// Migrate folds legacy rules into the current shape, using the vault to
// recognise folders.
func (s *Service) Migrate(_ context.Context) (bool, error) {
	return s.settings.Migrate(s.store.IsDir)
}
