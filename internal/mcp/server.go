// Package mcp exposes a rewrite session as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/recode/internal/apperr"
	"github.com/joescharf/recode/internal/guidelines"
	"github.com/joescharf/recode/internal/models"
	"github.com/joescharf/recode/internal/session"
)

// Server exposes one session for the lifetime of the process.
type Server struct {
	session *session.Session
	catalog *guidelines.Catalog
	version string
}

// NewServer creates the MCP server wrapper around sess.
func NewServer(sess *session.Session, catalog *guidelines.Catalog, version string) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{session: sess, catalog: catalog, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("recode", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.rewriteTool())
	srv.AddTool(s.listRevisionsTool())
	srv.AddTool(s.recordFeedbackTool())
	srv.AddTool(s.listTemplatesTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// recode_rewrite
func (s *Server) rewriteTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("recode_rewrite",
		mcp.WithDescription("Rewrite source code following guidelines. Returns the new revision as JSON with improved_code and explanation. Give either guidelines text or a template name; guidelines win if both are set."),
		mcp.WithString("source_code", mcp.Required(), mcp.Description("Source code to rewrite")),
		mcp.WithString("guidelines", mcp.Description("Free-form guidelines text")),
		mcp.WithString("template", mcp.Description("Name of a guideline template (see recode_list_templates)")),
	)
	return tool, s.handleRewrite
}

func (s *Server) handleRewrite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := request.RequireString("source_code")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: source_code"), nil
	}

	tmpl := strings.TrimSpace(request.GetString("template", ""))
	if tmpl != "" {
		if _, ok := s.catalog.Lookup(tmpl); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown template %q", tmpl)), nil
		}
	}

	req := models.RewriteRequest{SourceCode: src}
	if g := request.GetString("guidelines", ""); g != "" {
		req.Guidelines = s.catalog.Resolve(tmpl, &g)
	} else {
		req.Guidelines = s.catalog.Resolve(tmpl, nil)
		req.Template = tmpl
	}

	rev, err := s.session.Rewrite(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rev)
}

// recode_list_revisions
func (s *Server) listRevisionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("recode_list_revisions",
		mcp.WithDescription("List this session's rewrite revisions, newest first."),
	)
	return tool, s.handleListRevisions
}

func (s *Server) handleListRevisions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Revisions())
}

// recode_record_feedback
func (s *Server) recordFeedbackTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("recode_record_feedback",
		mcp.WithDescription("Rate the rewrites of this session from 1 to 5. A new rating replaces the previous one."),
		mcp.WithNumber("rating", mcp.Required(), mcp.Description("Rating from 1 (poor) to 5 (excellent)")),
		mcp.WithString("comment", mcp.Description("Optional comment")),
	)
	return tool, s.handleRecordFeedback
}

func (s *Server) handleRecordFeedback(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	value, err := request.RequireFloat("rating")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: rating"), nil
	}
	if value != math.Trunc(value) {
		err := apperr.Validation("rating", "must be a whole number from %d to %d, got %v", models.MinRating, models.MaxRating, value)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.session.RecordFeedback(int(value), request.GetString("comment", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fb, _ := s.session.Feedback()
	return jsonResult(fb)
}

// recode_list_templates
func (s *Server) listTemplatesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("recode_list_templates",
		mcp.WithDescription("List the guideline templates that recode_rewrite accepts, with their bodies."),
	)
	return tool, s.handleListTemplates
}

func (s *Server) handleListTemplates(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.catalog.Templates())
}
