package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/logpub/internal/publish"
	"github.com/starford/logpub/internal/storage"
	"github.com/starford/logpub/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	_, store := testutil.TestGraph(t, map[string]string{
		"pages/Home.md":   "public:: true\n\n((o-1))\n\n[[Other]] [[Secret]]\n",
		"pages/Other.md":  "public:: true\n\n- Hello\n  id:: o-1\n",
		"pages/Secret.md": "- hidden\n  id:: s-1\n",
	})
	outDir := filepath.Join(t.TempDir(), "out")
	out, err := storage.EnsureFS(outDir)
	if err != nil {
		t.Fatal(err)
	}
	x := publish.NewExporter(publish.Options{
		Graph:    store,
		Output:   out,
		NotesURL: "/notes",
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	return New(x, "test"), outDir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so the
	// handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_public_pages":
		result, err = srv.listPublicPages(ctx, req)
	case "render_page":
		result, err = srv.renderPage(ctx, req)
	case "lookup_block":
		result, err = srv.lookupBlock(ctx, req)
	case "export_site":
		result, err = srv.exportSite(ctx, req)
	case "get_graph_syntax":
		result, err = srv.getGraphSyntax(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListPublicPages(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "list_public_pages", map[string]interface{}{}))
	if text != "Home\t/notes/home/\nOther\t/notes/other/" {
		t.Errorf("list = %q", text)
	}
}

func TestRenderPage(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "render_page", map[string]interface{}{"title": "Home"})
	if r.IsError {
		t.Fatalf("render error: %s", resultText(r))
	}
	text := resultText(r)
	for _, want := range []string{
		"title: Home\nurl: /notes/home/\n",
		`<div class="embed">`,
		"<!-- dangling link: Secret -->",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("render missing %q:\n%s", want, text)
		}
	}
}

func TestRenderPage_Private(t *testing.T) {
	srv, _ := testServer(t)
	for _, title := range []string{"Secret", "Nope"} {
		r := callTool(t, srv, "render_page", map[string]interface{}{"title": title})
		if !r.IsError {
			t.Errorf("expected error rendering %q", title)
		}
	}
	if r := callTool(t, srv, "render_page", map[string]interface{}{}); !r.IsError {
		t.Error("expected error without title")
	}
}

func TestLookupBlock(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "lookup_block", map[string]interface{}{"id": "o-1"}))
	if !strings.Contains(text, `"source": "Other"`) || !strings.Contains(text, "Hello") {
		t.Errorf("block = %s", text)
	}
	if r := callTool(t, srv, "lookup_block", map[string]interface{}{"id": "s-1"}); !r.IsError {
		t.Error("private block must not be returned")
	}
}

func TestExportSite(t *testing.T) {
	srv, outDir := testServer(t)
	r := callTool(t, srv, "export_site", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("export error: %s", resultText(r))
	}
	for _, name := range []string{"Home.md", "Other.md"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "Secret.md")); err == nil {
		t.Error("Secret.md must not be written")
	}
}

func TestGraphSyntax(t *testing.T) {
	srv, _ := testServer(t)
	if text := resultText(callTool(t, srv, "get_graph_syntax", nil)); text != GraphSyntaxContract {
		t.Error("contract mismatch")
	}
}
