package modeservice

import (
	"errors"
	"log/slog"

	"github.com/starford/currentview/internal/apperr"
	"github.com/starford/currentview/internal/parser"
	"github.com/starford/currentview/internal/storage"
)

// MetadataProvider returns a note's frontmatter. *index.DB implements it.
type MetadataProvider interface {
	Frontmatter(path string) (map[string]any, error)
}

// frontmatter consults the metadata cache first and parses the note from
// storage when it is not cached yet. Missing notes have no frontmatter.
func (s *Service) frontmatter(path string) map[string]any {
	if !storage.IsNote(path) {
		return nil
	}
	if s.meta != nil {
		fm, err := s.meta.Frontmatter(path)
		if err == nil {
			return fm
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("metadata lookup failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil
	}
	return res.Frontmatter
}
