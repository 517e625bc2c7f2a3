// Package refindex maps block ids to the blocks they tag, per page and
// across the whole graph.
package refindex

import (
	"github.com/yuin/goldmark/ast"

	"github.com/starford/logpub/internal/markdown"
)

const idAttribute = "id"

// References returns the id → block associations found anywhere under n.
//
// A node's own associations come from one of two shapes, tried in order:
//
//   - a properties paragraph (attributes only) followed by a block: every id
//     attribute of the paragraph tags that following block;
//   - a paragraph mixing content with attributes: every id attribute tags
//     the paragraph itself.
//
// The second shape is only tried when the first yields nothing. A node's own
// associations win over those found in its descendants, and among siblings
// later ones win.
func References(n ast.Node) map[string]ast.Node {
	refs := make(map[string]ast.Node)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeInline {
			continue
		}
		for id, target := range References(c) {
			refs[id] = target
		}
	}

	local := propertiesBlock(n)
	if len(local) == 0 {
		local = taggedParagraph(n)
	}
	for id, target := range local {
		refs[id] = target
	}
	return refs
}

// propertiesBlock matches a first child made only of attributes followed by
// any block.
func propertiesBlock(n ast.Node) map[string]ast.Node {
	if n.ChildCount() < 2 {
		return nil
	}
	props := n.FirstChild()
	target := props.NextSibling()
	if !markdown.OnlyAttributes(props) || target.Type() != ast.TypeBlock {
		return nil
	}
	return collectIDs(props, target)
}

// taggedParagraph matches a paragraph carrying both content and attributes.
func taggedParagraph(n ast.Node) map[string]ast.Node {
	if !markdown.IsParagraph(n) || n.ChildCount() < 2 || markdown.OnlyAttributes(n) {
		return nil
	}
	return collectIDs(n, n)
}

func collectIDs(attrs, target ast.Node) map[string]ast.Node {
	var out map[string]ast.Node
	for c := attrs.FirstChild(); c != nil; c = c.NextSibling() {
		a, ok := c.(*markdown.Attribute)
		if !ok || a.Name != idAttribute || a.Value == "" {
			continue
		}
		if out == nil {
			out = make(map[string]ast.Node)
		}
		out[a.Value] = target
	}
	return out
}
