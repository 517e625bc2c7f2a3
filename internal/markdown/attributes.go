package markdown

import "github.com/yuin/goldmark/ast"

// IsParagraph reports whether n is a run of inline content: a paragraph or
// the text block of a tight list item.
func IsParagraph(n ast.Node) bool {
	switch n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return true
	}
	return false
}

// Attributes returns the attributes that are direct children of n, in
// order. Repeated names keep the last value.
func Attributes(n ast.Node) map[string]string {
	var attrs map[string]string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		a, ok := c.(*Attribute)
		if !ok {
			continue
		}
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs[a.Name] = a.Value
	}
	return attrs
}

// OnlyAttributes reports whether n is a paragraph whose content is nothing
// but attribute lines. Empty line-break text between them is ignored.
func OnlyAttributes(n ast.Node) bool {
	if !IsParagraph(n) || !n.HasChildren() {
		return false
	}
	seen := false
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *Attribute:
			seen = true
		case *ast.Text:
			if c.Segment.Len() != 0 {
				return false
			}
		default:
			return false
		}
	}
	return seen
}

// ExtractAttributes returns the page attributes of a document: the
// attributes of its first block when that block is a paragraph.
func ExtractAttributes(root ast.Node) map[string]string {
	first := root.FirstChild()
	if first == nil || !IsParagraph(first) {
		return map[string]string{}
	}
	attrs := Attributes(first)
	if attrs == nil {
		return map[string]string{}
	}
	return attrs
}
