package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Extension registers the note graph syntax with a goldmark instance.
type Extension struct {
	// NotesURL prefixes every rendered page link.
	NotesURL string
	// Slugify maps a page title to its URL path segment.
	Slugify func(string) string
}

// Extend implements goldmark.Extender.
func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&blockReferenceParser{}, 90),
		util.Prioritized(&wikiLinkParser{}, 100),
		util.Prioritized(&attributeParser{}, 110),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&htmlRenderer{notesURL: e.NotesURL, slugify: e.Slugify, md: m}, 500),
	))
}
