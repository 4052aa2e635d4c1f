// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the view-mode tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/currentview/internal/modeservice"
	"github.com/starford/currentview/internal/settings"
	"github.com/starford/currentview/internal/viewmode"
)

const ruleFormatURI = "currentview://rule-format"

// Server wraps the MCP server with the view-mode tools.
type Server struct {
	mcp *server.MCPServer
	svc *modeservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *modeservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"currentview",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_view_mode",
		mcp.WithDescription("Resolve the view mode a note opens in. Returns the matching "+
			"rule strings, the decision and where it came from."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault path of the note (e.g. folder/note.md)")),
	), s.resolveViewMode)

	s.mcp.AddTool(mcp.NewTool("lookup_lock",
		mcp.WithDescription("Show the rule string that pins a note or folder, if any."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault path of the note or folder")),
	), s.lookupLock)

	s.mcp.AddTool(mcp.NewTool("lock_path",
		mcp.WithDescription("Lock a file or folder to a view mode. Read the rule format "+
			"contract via the "+ruleFormatURI+" resource first."),
		mcp.WithString("target", mcp.Required(), mcp.Enum(string(settings.TargetFile), string(settings.TargetFolder)),
			mcp.Description("What to lock")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault path of the note or folder")),
		mcp.WithString("mode", mcp.Required(), mcp.Enum(modeNames()...), mcp.Description("View mode")),
	), s.lockPath)

	s.mcp.AddTool(mcp.NewTool("unlock_path",
		mcp.WithDescription("Remove the lock of a file or folder."),
		mcp.WithString("target", mcp.Required(), mcp.Enum(string(settings.TargetFile), string(settings.TargetFolder)),
			mcp.Description("What to unlock")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault path of the note or folder")),
	), s.unlockPath)

	s.mcp.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List folder rules and pattern rules in priority order."),
	), s.listRules)

	s.mcp.AddResource(
		mcp.NewResource(ruleFormatURI, "View Mode Rule Format",
			mcp.WithResourceDescription("How rule strings, folder rules and pattern rules decide a note's view mode."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRuleFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func modeNames() []string {
	out := make([]string, len(viewmode.Modes))
	for i, m := range viewmode.Modes {
		out[i] = string(m)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) resolveViewMode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Resolve(ctx, path))
}

func (s *Server) lookupLock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info := s.svc.LookupLock(ctx, path)
	if !info.Locked {
		return mcp.NewToolResultText("not locked: " + path), nil
	}
	return mcp.NewToolResultText(info.Lock), nil
}

func (s *Server) lockPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, path, err := targetAndPath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Lock(ctx, target, path, viewmode.Mode(mode))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) unlockPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, path, err := targetAndPath(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Unlock(ctx, target, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func targetAndPath(req mcp.CallToolRequest) (settings.Target, string, error) {
	raw, err := req.RequireString("target")
	if err != nil {
		return "", "", err
	}
	target, err := settings.ParseTarget(raw)
	if err != nil {
		return "", "", err
	}
	path, err := req.RequireString("path")
	if err != nil {
		return "", "", err
	}
	return target, path, nil
}

func (s *Server) listRules(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := s.svc.Settings(ctx)
	return jsonResult(map[string]any{
		"frontmatter_key": cfg.CustomFrontmatterKey,
		"folder_rules":    cfg.FolderRules,
		"pattern_rules":   cfg.PatternRules,
	})
}

func (s *Server) readRuleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ruleFormatURI,
			MIMEType: "text/markdown",
			Text:     RuleFormatContract,
		},
	}, nil
}
