package api

import (
	"github.com/starford/currentview/internal/explorer"
	"github.com/starford/currentview/internal/modeservice"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/workspace"
)

// LockRequest is the request body for locking a file or folder.
type LockRequest struct {
	Mode string `json:"mode" example:"reading" validate:"required"`
}

// MoveRequest is the request body for moving a note or folder.
type MoveRequest struct {
	From string `json:"from" example:"inbox/todo.md" validate:"required"`
	To   string `json:"to" example:"projects/todo.md" validate:"required"`
}

// OpenLeafRequest is the request body for showing a note in a leaf.
type OpenLeafRequest struct {
	Path string `json:"path" example:"projects/plan.md"`
}

// MoveRuleRequest is the request body for reordering a pattern rule.
type MoveRuleRequest struct {
	To int `json:"to" example:"0"`
}

// FolderRule is a folder rule row (aliased from the domain layer).
type FolderRule = settings.FolderRule

// PatternRule is a pattern rule row (aliased from the domain layer).
type PatternRule = settings.PatternRule

// Flags is the PUT /settings body (aliased from the domain layer).
type Flags = settings.Flags

// Resolution is the resolve response type (aliased from the domain layer).
type Resolution = modeservice.Resolution

// LockResult is the lock and unlock response type (aliased from the domain layer).
type LockResult = modeservice.LockResult

// Leaf is a workspace pane (aliased from the domain layer).
type Leaf = workspace.Leaf

// Badge is an explorer decoration (aliased from the domain layer).
type Badge = explorer.Badge

// LockResponse describes the current lock of a path and the menu offered
// for it.
type LockResponse struct {
	modeservice.LockInfo
	Target settings.Target `json:"target" example:"file" validate:"required"`
	Menu   explorer.Menu   `json:"menu" validate:"required"`
}

// FolderRulesResponse wraps the folder rule list.
type FolderRulesResponse struct {
	Rules []FolderRule `json:"rules" validate:"required"`
}

// PatternRulesResponse wraps the pattern rule list.
type PatternRulesResponse struct {
	Rules []PatternRule `json:"rules" validate:"required"`
}

// ExplorerResponse wraps explorer decorations.
type ExplorerResponse struct {
	Items []Badge `json:"items" validate:"required"`
}

// LeavesResponse wraps the open leaves.
type LeavesResponse struct {
	Leaves []Leaf `json:"leaves" validate:"required"`
}

// ResetResponse reports how many leaves were returned to the host default.
type ResetResponse struct {
	Reset int `json:"reset" example:"3"`
}
