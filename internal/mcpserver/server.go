// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the published view of a note graph via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/logpub/internal/apperr"
	"github.com/starford/logpub/internal/publish"
)

const syntaxResourceURI = "logpub://graph-syntax"

// Site is the exporter as seen by the tools.
type Site interface {
	Current() *publish.Snapshot
	Build(ctx context.Context) (*publish.Snapshot, error)
	Export(ctx context.Context) (*publish.Result, error)
}

// Server wraps the MCP server with logpub tools.
type Server struct {
	mcp  *server.MCPServer
	site Site
}

// New creates a new MCP server with all logpub tools registered.
func New(site Site, version string) *Server {
	s := &Server{site: site}

	s.mcp = server.NewMCPServer(
		"logpub",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_public_pages",
		mcp.WithDescription("List the pages an export publishes, with their URLs."),
	), s.listPublicPages)

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a published page exactly as the export writes it, "+
			"front matter included. Reports unresolved block references and dangling links."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Page title (file name without .md)")),
	), s.renderPage)

	s.mcp.AddTool(mcp.NewTool("lookup_block",
		mcp.WithDescription("Render the block tagged with an id:: attribute, with the page it belongs to."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
	), s.lookupBlock)

	s.mcp.AddTool(mcp.NewTool("export_site",
		mcp.WithDescription("Re-read the graph and write every published page to the output directory."),
	), s.exportSite)

	s.mcp.AddTool(mcp.NewTool("get_graph_syntax",
		mcp.WithDescription("Returns the graph syntax contract: page attributes, block ids, links and embeds."),
	), s.getGraphSyntax)

	s.mcp.AddResource(
		mcp.NewResource(syntaxResourceURI, "Graph Syntax",
			mcp.WithResourceDescription("Markdown syntax of graph pages understood by the exporter."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSyntaxResource,
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

// snapshot returns the current snapshot, building one on first use.
func (s *Server) snapshot(ctx context.Context) (*publish.Snapshot, error) {
	if snap := s.site.Current(); snap != nil {
		return snap, nil
	}
	return s.site.Build(ctx)
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrNotPublic):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listPublicPages(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return toolError(err), nil
	}
	var lines []string
	for _, p := range snap.Pages() {
		lines = append(lines, p.Title+"\t"+snap.URL(p.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no public pages"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) renderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return toolError(err), nil
	}
	p, err := snap.PageByTitle(title)
	if err != nil {
		return toolError(err), nil
	}
	r, err := snap.Render(p)
	if err != nil {
		return toolError(err), nil
	}
	doc, err := r.Document()
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.Write(doc)
	for _, u := range r.Unresolved {
		fmt.Fprintf(&b, "\n<!-- unresolved reference %s: %s -->", u.ID, u.Reason)
	}
	for _, d := range r.Dangling {
		fmt.Fprintf(&b, "\n<!-- dangling link: %s -->", d)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) lookupBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return toolError(err), nil
	}
	block, err := snap.RenderBlock(id)
	if err != nil {
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(block, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) exportSite(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.site.Export(ctx)
	if res == nil {
		return toolError(err), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s\n%s", err.Error(), out)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getGraphSyntax(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(GraphSyntaxContract), nil
}

func (s *Server) readSyntaxResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      syntaxResourceURI,
			MIMEType: "text/markdown",
			Text:     GraphSyntaxContract,
		},
	}, nil
}
