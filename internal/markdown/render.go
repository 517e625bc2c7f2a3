package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// htmlRenderer renders the note graph node kinds. Everything else is left to
// goldmark's HTML renderer.
type htmlRenderer struct {
	notesURL string
	slugify  func(string) string
	md       goldmark.Markdown
}

func (r *htmlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAttribute, r.renderAttribute)
	reg.Register(KindWikiLink, r.renderWikiLink)
	reg.Register(KindBlockReference, r.renderBlockReference)
	reg.Register(KindBlockEmbed, r.renderBlockEmbed)
}

func (r *htmlRenderer) pageURL(title string) string {
	return strings.TrimRight(r.notesURL, "/") + "/" + r.slugify(title)
}

func (r *htmlRenderer) renderAttribute(_ util.BufWriter, _ []byte, _ ast.Node, _ bool) (ast.WalkStatus, error) {
	return ast.WalkSkipChildren, nil
}

func (r *htmlRenderer) renderBlockReference(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*BlockReference)
		_, _ = w.WriteString("REFERENCE: ")
		_, _ = w.Write(util.EscapeHTML([]byte(n.ID)))
	}
	return ast.WalkSkipChildren, nil
}

func (r *htmlRenderer) renderWikiLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*WikiLink)
	label := util.EscapeHTML([]byte("[[" + n.Page + "]]"))
	if n.Resolved {
		_, _ = w.WriteString(`<a class="wikilink" href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(r.pageURL(n.Page)), false)))
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(label)
		_, _ = w.WriteString("</a>")
	} else {
		_, _ = w.WriteString(`<span class="wikilink wikilink-dangling">`)
		_, _ = w.Write(label)
		_, _ = w.WriteString("</span>")
	}
	return ast.WalkSkipChildren, nil
}

// renderBlockEmbed writes the attribution line and then renders the wrapped
// subtree against the embed's own source.
func (r *htmlRenderer) renderBlockEmbed(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkSkipChildren, nil
	}
	n := node.(*BlockEmbed)
	title := util.EscapeHTML([]byte(n.SourceTitle))

	_, _ = w.WriteString("<div class=\"embed\">\n<div class=\"embed-source\">")
	if n.SourcePublic {
		_, _ = w.WriteString(`<a href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape([]byte(r.pageURL(n.SourceTitle)), false)))
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(title)
		_, _ = w.WriteString("</a>")
	} else {
		_, _ = w.WriteString(`<span class="embed-source-private">`)
		_, _ = w.Write(title)
		_, _ = w.WriteString("</span>")
	}
	_, _ = w.WriteString("</div>\n")

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if err := r.md.Renderer().Render(w, n.Source, c); err != nil {
			return ast.WalkStop, err
		}
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}
