package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/currentview/internal/apperr"
	"github.com/starford/currentview/internal/modeservice"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/viewmode"
)

// Handler holds API route handlers.
type Handler struct {
	svc *modeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *modeservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the vault path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func ruleIndex(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	return i, err == nil
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported as 500.
func writeError(w http.ResponseWriter, op string, err error, attrs ...any) {
	var verr validation.Errors
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict), errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrInvalidRule),
		errors.Is(err, apperr.ErrInvalidMode),
		errors.Is(err, apperr.ErrInvalidTarget),
		errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get the current settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	settings.Settings
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Settings(r.Context()))
}

// UpdateSettings handles PUT /api/settings.
//
//	@Summary		Update flags and the frontmatter key
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Flags	true	"Fields to change"
//	@Success		200		{object}	settings.Settings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req Flags
	if !readJSON(w, r, &req) {
		return
	}
	next, err := h.svc.UpdateFlags(r.Context(), req)
	if err != nil {
		writeError(w, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// ListFolderRules handles GET /api/rules/folders.
//
//	@Summary		List folder rules
//	@Tags			rules
//	@Produce		json
//	@Success		200	{object}	FolderRulesResponse
//	@Security		BearerAuth
//	@Router			/rules/folders [get]
func (h *Handler) ListFolderRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FolderRulesResponse{Rules: h.svc.FolderRules(r.Context())})
}

// AddFolderRule handles POST /api/rules/folders.
//
//	@Summary		Append a folder rule
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			body	body		FolderRule	true	"Rule row"
//	@Success		201		{object}	FolderRulesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/folders [post]
func (h *Handler) AddFolderRule(w http.ResponseWriter, r *http.Request) {
	var req FolderRule
	if !readJSON(w, r, &req) {
		return
	}
	out, err := h.svc.AddFolderRule(r.Context(), req)
	if err != nil {
		writeError(w, "add folder rule", err, slog.String("path", req.Path))
		return
	}
	writeJSON(w, http.StatusCreated, FolderRulesResponse{Rules: out})
}

// UpdateFolderRule handles PUT /api/rules/folders/{index}.
//
//	@Summary		Replace a folder rule
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			index	path		int			true	"Rule index"
//	@Param			body	body		FolderRule	true	"Rule row"
//	@Success		200		{object}	FolderRulesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/folders/{index} [put]
func (h *Handler) UpdateFolderRule(w http.ResponseWriter, r *http.Request) {
	i, ok := ruleIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	var req FolderRule
	if !readJSON(w, r, &req) {
		return
	}
	out, err := h.svc.SetFolderRule(r.Context(), i, req)
	if err != nil {
		writeError(w, "update folder rule", err, slog.Int("index", i))
		return
	}
	writeJSON(w, http.StatusOK, FolderRulesResponse{Rules: out})
}

// DeleteFolderRule handles DELETE /api/rules/folders/{index}.
//
//	@Summary		Delete a folder rule
//	@Tags			rules
//	@Produce		json
//	@Param			index	path		int	true	"Rule index"
//	@Success		200		{object}	FolderRulesResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/folders/{index} [delete]
func (h *Handler) DeleteFolderRule(w http.ResponseWriter, r *http.Request) {
	i, ok := ruleIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	out, err := h.svc.DeleteFolderRule(r.Context(), i)
	if err != nil {
		writeError(w, "delete folder rule", err, slog.Int("index", i))
		return
	}
	writeJSON(w, http.StatusOK, FolderRulesResponse{Rules: out})
}

// ListPatternRules handles GET /api/rules/patterns.
//
//	@Summary		List pattern rules in priority order
//	@Tags			rules
//	@Produce		json
//	@Success		200	{object}	PatternRulesResponse
//	@Security		BearerAuth
//	@Router			/rules/patterns [get]
func (h *Handler) ListPatternRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PatternRulesResponse{Rules: h.svc.PatternRules(r.Context())})
}

// AddPatternRule handles POST /api/rules/patterns.
//
//	@Summary		Append a pattern rule
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PatternRule	true	"Rule row"
//	@Success		201		{object}	PatternRulesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/patterns [post]
func (h *Handler) AddPatternRule(w http.ResponseWriter, r *http.Request) {
	var req PatternRule
	if !readJSON(w, r, &req) {
		return
	}
	out, err := h.svc.AddPatternRule(r.Context(), req)
	if err != nil {
		writeError(w, "add pattern rule", err, slog.String("pattern", req.Pattern))
		return
	}
	writeJSON(w, http.StatusCreated, PatternRulesResponse{Rules: out})
}

// UpdatePatternRule handles PUT /api/rules/patterns/{index}.
//
//	@Summary		Replace a pattern rule
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			index	path		int			true	"Rule index"
//	@Param			body	body		PatternRule	true	"Rule row"
//	@Success		200		{object}	PatternRulesResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/patterns/{index} [put]
func (h *Handler) UpdatePatternRule(w http.ResponseWriter, r *http.Request) {
	i, ok := ruleIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	var req PatternRule
	if !readJSON(w, r, &req) {
		return
	}
	out, err := h.svc.SetPatternRule(r.Context(), i, req)
	if err != nil {
		writeError(w, "update pattern rule", err, slog.Int("index", i))
		return
	}
	writeJSON(w, http.StatusOK, PatternRulesResponse{Rules: out})
}

// DeletePatternRule handles DELETE /api/rules/patterns/{index}.
//
//	@Summary		Delete a pattern rule
//	@Tags			rules
//	@Produce		json
//	@Param			index	path		int	true	"Rule index"
//	@Success		200		{object}	PatternRulesResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/patterns/{index} [delete]
func (h *Handler) DeletePatternRule(w http.ResponseWriter, r *http.Request) {
	i, ok := ruleIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	out, err := h.svc.DeletePatternRule(r.Context(), i)
	if err != nil {
		writeError(w, "delete pattern rule", err, slog.Int("index", i))
		return
	}
	writeJSON(w, http.StatusOK, PatternRulesResponse{Rules: out})
}

// MovePatternRule handles POST /api/rules/patterns/{index}/move.
//
//	@Summary		Change the priority of a pattern rule
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			index	path		int				true	"Rule index"
//	@Param			body	body		MoveRuleRequest	true	"New position"
//	@Success		200		{object}	PatternRulesResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/patterns/{index}/move [post]
func (h *Handler) MovePatternRule(w http.ResponseWriter, r *http.Request) {
	i, ok := ruleIndex(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid index"))
		return
	}
	var req MoveRuleRequest
	if !readJSON(w, r, &req) {
		return
	}
	out, err := h.svc.MovePatternRule(r.Context(), i, req.To)
	if err != nil {
		writeError(w, "move pattern rule", err, slog.Int("from", i), slog.Int("to", req.To))
		return
	}
	writeJSON(w, http.StatusOK, PatternRulesResponse{Rules: out})
}

// GetLock handles GET /api/locks/*.
//
//	@Summary		Get the lock and lock menu of a path
//	@Tags			locks
//	@Produce		json
//	@Param			path	path		string	true	"Vault path"
//	@Param			target	query		string	false	"Lock target"	Enums(file, folder)
//	@Success		200		{object}	LockResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/locks/{path} [get]
func (h *Handler) GetLock(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	target := h.svc.TargetOf(path)
	if raw := r.URL.Query().Get("target"); raw != "" {
		t, err := settings.ParseTarget(raw)
		if err != nil {
			writeError(w, "get lock", err)
			return
		}
		target = t
	}
	writeJSON(w, http.StatusOK, LockResponse{
		LockInfo: h.svc.LookupLock(r.Context(), path),
		Target:   target,
		Menu:     h.svc.LockMenu(r.Context(), path, target),
	})
}

// lockTarget splits "/locks/{target}/{path}" into its parts.
func lockTarget(r *http.Request) (settings.Target, string, error) {
	raw, path, _ := strings.Cut(notePath(r), "/")
	t, err := settings.ParseTarget(raw)
	if err != nil {
		return "", "", err
	}
	return t, path, nil
}

// Lock handles PUT /api/locks/{target}/*.
//
//	@Summary		Lock a file or folder to a view mode
//	@Tags			locks
//	@Accept			json
//	@Produce		json
//	@Param			target	path		string		true	"Lock target"	Enums(file, folder)
//	@Param			path	path		string		true	"Vault path"
//	@Param			body	body		LockRequest	true	"Mode to lock"
//	@Success		200		{object}	LockResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/locks/{target}/{path} [put]
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	target, path, err := lockTarget(r)
	if err != nil {
		writeError(w, "lock", err)
		return
	}
	var req LockRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Lock(r.Context(), target, path, viewmode.Mode(req.Mode))
	if err != nil {
		writeError(w, "lock", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Unlock handles DELETE /api/locks/{target}/*.
//
//	@Summary		Unlock a file or folder
//	@Tags			locks
//	@Produce		json
//	@Param			target	path		string	true	"Lock target"	Enums(file, folder)
//	@Param			path	path		string	true	"Vault path"
//	@Success		200		{object}	LockResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/locks/{target}/{path} [delete]
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	target, path, err := lockTarget(r)
	if err != nil {
		writeError(w, "unlock", err)
		return
	}
	res, err := h.svc.Unlock(r.Context(), target, path)
	if err != nil {
		writeError(w, "unlock", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Resolve handles GET /api/resolve/*.
//
//	@Summary		Resolve the view mode of a note
//	@Tags			resolve
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	Resolution
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve/{path} [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Resolve(r.Context(), path))
}

// Explorer handles GET /api/explorer.
//
//	@Summary		Explorer lock decorations
//	@Tags			explorer
//	@Produce		json
//	@Param			dir	query		string	false	"Folder to list"
//	@Success		200	{object}	ExplorerResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/explorer [get]
func (h *Handler) Explorer(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	items, err := h.svc.Explorer(r.Context(), dir)
	if err != nil {
		writeError(w, "explorer", err, slog.String("dir", dir))
		return
	}
	writeJSON(w, http.StatusOK, ExplorerResponse{Items: items})
}

// MoveNote handles POST /api/notes/move.
//
//	@Summary		Move a note or folder and carry its rules along
//	@Tags			notes
//	@Accept			json
//	@Param			body	body	MoveRequest	true	"Source and destination"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/move [post]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.From == "" || req.To == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}
	if err := h.svc.MoveNote(r.Context(), req.From, req.To); err != nil {
		writeError(w, "move note", err, slog.String("from", req.From), slog.String("to", req.To))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLeaves handles GET /api/workspace/leaves.
//
//	@Summary		List open leaves
//	@Tags			workspace
//	@Produce		json
//	@Success		200	{object}	LeavesResponse
//	@Security		BearerAuth
//	@Router			/workspace/leaves [get]
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LeavesResponse{Leaves: h.svc.Leaves(r.Context())})
}

// GetLeaf handles GET /api/workspace/leaves/{id}.
//
//	@Summary		Get one leaf
//	@Tags			workspace
//	@Produce		json
//	@Param			id	path		string	true	"Leaf ID"
//	@Success		200	{object}	Leaf
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace/leaves/{id} [get]
func (h *Handler) GetLeaf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	leaf, err := h.svc.Leaf(r.Context(), id)
	if err != nil {
		writeError(w, "get leaf", err, slog.String("leaf", id))
		return
	}
	writeJSON(w, http.StatusOK, leaf)
}

// OpenLeaf handles POST /api/workspace/leaves/{id}/open.
//
//	@Summary		Show a note in a leaf
//	@Description	The mode is applied after the debounce timeout.
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Leaf ID"
//	@Param			body	body		OpenLeafRequest	true	"Note to show"
//	@Success		202		{object}	Leaf
//	@Security		BearerAuth
//	@Router			/workspace/leaves/{id}/open [post]
func (h *Handler) OpenLeaf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req OpenLeafRequest
	if !readJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusAccepted, h.svc.OpenLeaf(r.Context(), id, req.Path))
}

// CloseLeaf handles DELETE /api/workspace/leaves/{id}.
//
//	@Summary		Close a leaf
//	@Tags			workspace
//	@Param			id	path	string	true	"Leaf ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/workspace/leaves/{id} [delete]
func (h *Handler) CloseLeaf(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.CloseLeaf(r.Context(), id); err != nil {
		writeError(w, "close leaf", err, slog.String("leaf", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetWorkspace handles POST /api/workspace/reset.
//
//	@Summary		Return every note leaf to the host default view
//	@Tags			workspace
//	@Produce		json
//	@Success		200	{object}	ResetResponse
//	@Security		BearerAuth
//	@Router			/workspace/reset [post]
func (h *Handler) ResetWorkspace(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ResetResponse{Reset: h.svc.ResetWorkspace(r.Context())})
}
