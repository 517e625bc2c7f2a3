package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/yuin/goldmark/ast"

	"github.com/starford/logpub/internal/apperr"
)

func testEngine() *Engine {
	return NewEngine(Options{
		NotesURL: "/notes",
		Slugify:  func(s string) string { return strings.ToLower(strings.ReplaceAll(s, " ", "-")) },
	})
}

func parse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := testEngine().Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func collect[T ast.Node](t *testing.T, root ast.Node) []T {
	t.Helper()
	var out []T
	err := Walk(root, func(n ast.Node) (ast.WalkStatus, error) {
		if v, ok := n.(T); ok {
			out = append(out, v)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return out
}

func render(t *testing.T, doc *Document) string {
	t.Helper()
	out, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	return out
}

func TestParse_PageAttributes(t *testing.T) {
	doc := parse(t, "public:: true\ntags:: go, notes\n\n# Title\n")
	attrs := ExtractAttributes(doc.Root)
	if attrs["public"] != "true" {
		t.Errorf("public = %q, want %q", attrs["public"], "true")
	}
	if attrs["tags"] != "go, notes" {
		t.Errorf("tags = %q, want %q", attrs["tags"], "go, notes")
	}
	if !OnlyAttributes(doc.Root.FirstChild()) {
		t.Error("expected first paragraph to hold only attributes")
	}
}

func TestParse_AttributesOnlyOnFirstBlock(t *testing.T) {
	doc := parse(t, "# Title\n\npublic:: true\n")
	if attrs := ExtractAttributes(doc.Root); len(attrs) != 0 {
		t.Errorf("attrs = %v, want empty", attrs)
	}
	if got := len(collect[*Attribute](t, doc.Root)); got != 1 {
		t.Errorf("attribute nodes = %d, want 1", got)
	}
}

func TestParse_AttributeNeedsLineStart(t *testing.T) {
	doc := parse(t, "see foo:: bar\n")
	if got := collect[*Attribute](t, doc.Root); len(got) != 0 {
		t.Errorf("attribute nodes = %d, want 0", len(got))
	}
}

func TestParse_AttributeAfterContent(t *testing.T) {
	doc := parse(t, "- Hello\n  id:: abc-123\n")
	attrs := collect[*Attribute](t, doc.Root)
	if len(attrs) != 1 {
		t.Fatalf("attribute nodes = %d, want 1", len(attrs))
	}
	if attrs[0].Name != "id" || attrs[0].Value != "abc-123" {
		t.Errorf("attribute = %s:%s, want id:abc-123", attrs[0].Name, attrs[0].Value)
	}
	if !IsParagraph(attrs[0].Parent()) {
		t.Errorf("attribute parent = %s, want a paragraph", attrs[0].Parent().Kind())
	}
	if OnlyAttributes(attrs[0].Parent()) {
		t.Error("mixed paragraph reported as attributes only")
	}
}

func TestParse_WikiLink(t *testing.T) {
	doc := parse(t, "go to [[My Page]] and [[Other]] now\n")
	links := collect[*WikiLink](t, doc.Root)
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if links[0].Page != "My Page" || links[1].Page != "Other" {
		t.Errorf("pages = %q, %q", links[0].Page, links[1].Page)
	}
	if links[0].Resolved {
		t.Error("parsed link must start unresolved")
	}
}

func TestParse_BlockReferenceWholeContent(t *testing.T) {
	doc := parse(t, "((abc-123))\n\nsee ((def-456))\n")
	refs := collect[*BlockReference](t, doc.Root)
	if len(refs) != 1 {
		t.Fatalf("refs = %d, want 1", len(refs))
	}
	if refs[0].ID != "abc-123" {
		t.Errorf("id = %q, want %q", refs[0].ID, "abc-123")
	}
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := testEngine().Parse([]byte{0xff, 0xfe, '\n'})
	if !errors.Is(err, apperr.ErrMalformedSource) {
		t.Errorf("err = %v, want ErrMalformedSource", err)
	}
}

func TestRender_UnresolvedReference(t *testing.T) {
	out := render(t, parse(t, "((abc-123))\n"))
	if !strings.Contains(out, "REFERENCE: abc-123") {
		t.Errorf("output = %q, want REFERENCE marker", out)
	}
}

func TestRender_AttributesHidden(t *testing.T) {
	out := render(t, parse(t, "Hello\nid:: abc-123\n"))
	if strings.Contains(out, "id::") || strings.Contains(out, "abc-123") {
		t.Errorf("attribute leaked into output: %q", out)
	}
	if !strings.Contains(out, "Hello") {
		t.Errorf("output = %q, want paragraph text", out)
	}
}

func TestRender_WikiLinks(t *testing.T) {
	doc := parse(t, "[[My Page]]\n")
	out := render(t, doc)
	if !strings.Contains(out, `<span class="wikilink wikilink-dangling">[[My Page]]</span>`) {
		t.Errorf("dangling output = %q", out)
	}

	collect[*WikiLink](t, doc.Root)[0].Resolved = true
	out = render(t, doc)
	if !strings.Contains(out, `<a class="wikilink" href="/notes/my-page">[[My Page]]</a>`) {
		t.Errorf("resolved output = %q", out)
	}
}

func TestRender_BlockEmbed(t *testing.T) {
	eng := testEngine()
	src, err := eng.Parse([]byte("Embedded *text*\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	target := src.Root.FirstChild()
	src.Root.RemoveChild(src.Root, target)

	page, err := eng.Parse([]byte("intro\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	page.Root.AppendChild(page.Root, NewBlockEmbed("x", "Source Page", true, src.Source, target))

	out := render(t, page)
	for _, want := range []string{
		`<div class="embed">`,
		`<a href="/notes/source-page">Source Page</a>`,
		`Embedded <em>text</em>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	page.Root.LastChild().(*BlockEmbed).SourcePublic = false
	out = render(t, page)
	if !strings.Contains(out, `<span class="embed-source-private">Source Page</span>`) {
		t.Errorf("private attribution missing:\n%s", out)
	}
}

func TestClone_Isolated(t *testing.T) {
	doc := parse(t, "[[A]]\n")
	clone := doc.Clone()
	collect[*WikiLink](t, clone.Root)[0].Resolved = true
	if collect[*WikiLink](t, doc.Root)[0].Resolved {
		t.Error("mutating the clone changed the original")
	}
}

func TestPathOfNodeAt(t *testing.T) {
	doc := parse(t, "first\n\n- one\n- two [[X]]\n")
	link := collect[*WikiLink](t, doc.Root)[0]
	path := PathOf(doc.Root, link)
	if path == nil {
		t.Fatal("PathOf returned nil")
	}
	if got := NodeAt(doc.Root, path); got != link {
		t.Errorf("NodeAt(%v) = %v, want the link", path, got)
	}
	cp, ok := doc.CopyAt(path).(*WikiLink)
	if !ok {
		t.Fatalf("CopyAt(%v) is not a WikiLink", path)
	}
	if cp == link || cp.Page != "X" || cp.Parent() != nil {
		t.Errorf("CopyAt returned %+v, want a detached copy", cp)
	}
	if NodeAt(doc.Root, []int{9}) != nil {
		t.Error("out of range path should return nil")
	}
}

func TestWalk_ReplaceDuringWalk(t *testing.T) {
	doc := parse(t, "a\n\nb\n\nc\n")
	visited := 0
	err := Walk(doc.Root, func(n ast.Node) (ast.WalkStatus, error) {
		if _, ok := n.(*ast.Paragraph); ok {
			visited++
			p := n.Parent()
			p.ReplaceChild(p, n, ast.NewThematicBreak())
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if visited != 3 {
		t.Errorf("visited = %d, want 3", visited)
	}
	if got := doc.Root.ChildCount(); got != 3 {
		t.Errorf("children = %d, want 3", got)
	}
}
