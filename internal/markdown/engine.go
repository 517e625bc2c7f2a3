package markdown

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/starford/logpub/internal/apperr"
)

// Options configures an Engine.
type Options struct {
	NotesURL string
	Slugify  func(string) string
}

// Engine parses note sources and renders their trees. It is safe for
// concurrent use.
type Engine struct {
	md goldmark.Markdown
}

// NewEngine builds an Engine with GFM, footnotes and the note graph syntax.
func NewEngine(opts Options) *Engine {
	if opts.Slugify == nil {
		opts.Slugify = func(s string) string { return s }
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			&Extension{NotesURL: opts.NotesURL, Slugify: opts.Slugify},
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &Engine{md: md}
}

// Parse builds the tree for one note source.
func (e *Engine) Parse(src []byte) (*Document, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("parse: %w: invalid UTF-8", apperr.ErrMalformedSource)
	}
	root := e.md.Parser().Parse(text.NewReader(src))
	return &Document{Source: src, Root: root, engine: e}, nil
}

// Render writes the HTML for n, whose text segments point into source.
func (e *Engine) Render(w io.Writer, source []byte, n ast.Node) error {
	return e.md.Renderer().Render(w, source, n)
}

// Document is a parsed note: its source bytes and the tree over them.
type Document struct {
	Source []byte
	Root   ast.Node
	engine *Engine
}

// Clone returns an independent copy of the document. goldmark nodes cannot
// be copied field by field, so the copy is parsed again from the source.
func (d *Document) Clone() *Document {
	return &Document{
		Source: d.Source,
		Root:   d.engine.md.Parser().Parse(text.NewReader(d.Source)),
		engine: d.engine,
	}
}

// CopyAt returns a detached copy of the node found at path in d. It returns
// nil if path no longer addresses a node.
func (d *Document) CopyAt(path []int) ast.Node {
	n := NodeAt(d.Clone().Root, path)
	if n == nil {
		return nil
	}
	if p := n.Parent(); p != nil {
		p.RemoveChild(p, n)
	}
	return n
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return d.engine.Render(w, d.Source, d.Root)
}

// HTML renders the document into a string.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
