package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/currentview/internal/modeservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *modeservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Settings flags.
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)

	// Rule tables.
	r.Route("/rules/folders", func(r chi.Router) {
		r.Get("/", h.ListFolderRules)
		r.Post("/", h.AddFolderRule)
		r.Put("/{index}", h.UpdateFolderRule)
		r.Delete("/{index}", h.DeleteFolderRule)
	})
	r.Route("/rules/patterns", func(r chi.Router) {
		r.Get("/", h.ListPatternRules)
		r.Post("/", h.AddPatternRule)
		r.Put("/{index}", h.UpdatePatternRule)
		r.Delete("/{index}", h.DeletePatternRule)
		r.Post("/{index}/move", h.MovePatternRule)
	})

	// Locks. PUT and DELETE carry the target as the first path segment.
	r.Get("/locks/*", h.GetLock)
	r.Put("/locks/*", h.Lock)
	r.Delete("/locks/*", h.Unlock)

	r.Get("/resolve/*", h.Resolve)
	r.Get("/explorer", h.Explorer)
	r.Post("/notes/move", h.MoveNote)

	// Workspace leaves.
	r.Route("/workspace", func(r chi.Router) {
		r.Get("/leaves", h.ListLeaves)
		r.Get("/leaves/{id}", h.GetLeaf)
		r.Delete("/leaves/{id}", h.CloseLeaf)
		r.Post("/leaves/{id}/open", h.OpenLeaf)
		r.Post("/reset", h.ResetWorkspace)
	})

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
