// Package markdown layers the note graph constructs (attributes, wiki links,
// block references and block embeds) onto goldmark's Markdown tree.
package markdown

import (
	"strconv"

	"github.com/yuin/goldmark/ast"
)

var (
	KindAttribute      = ast.NewNodeKind("Attribute")
	KindWikiLink       = ast.NewNodeKind("WikiLink")
	KindBlockReference = ast.NewNodeKind("BlockReference")
	KindBlockEmbed     = ast.NewNodeKind("BlockEmbed")
)

// Attribute is a `name:: value` line. It is metadata for the block that
// contains it and never renders.
type Attribute struct {
	ast.BaseInline
	Name  string
	Value string
}

// NewAttribute returns a new Attribute node.
func NewAttribute(name, value string) *Attribute {
	return &Attribute{Name: name, Value: value}
}

// Kind implements ast.Node.
func (n *Attribute) Kind() ast.NodeKind { return KindAttribute }

// Dump implements ast.Node.
func (n *Attribute) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":  n.Name,
		"Value": n.Value,
	}, nil)
}

// WikiLink is a `[[page]]` link. Resolved is only set by the visibility pass
// of an export run and is never read back from a previous run.
type WikiLink struct {
	ast.BaseInline
	Page     string
	Resolved bool
}

// NewWikiLink returns a new, unresolved WikiLink node.
func NewWikiLink(page string) *WikiLink {
	return &WikiLink{Page: page}
}

// Kind implements ast.Node.
func (n *WikiLink) Kind() ast.NodeKind { return KindWikiLink }

// Dump implements ast.Node.
func (n *WikiLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Page":     n.Page,
		"Resolved": strconv.FormatBool(n.Resolved),
	}, nil)
}

// BlockReference is a `((id))` placeholder for a block defined elsewhere.
type BlockReference struct {
	ast.BaseInline
	ID string
}

// NewBlockReference returns a new BlockReference node.
func NewBlockReference(id string) *BlockReference {
	return &BlockReference{ID: id}
}

// Kind implements ast.Node.
func (n *BlockReference) Kind() ast.NodeKind { return KindBlockReference }

// Dump implements ast.Node.
func (n *BlockReference) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"ID": n.ID}, nil)
}

// BlockEmbed wraps a copy of a referenced block together with where it came
// from. It is never produced by the parser, only by the embedding pass.
//
// Source holds the bytes of the page the copy was parsed from; text segments
// inside the wrapped subtree point into it, not into the embedding page.
type BlockEmbed struct {
	ast.BaseBlock
	ID           string
	SourceTitle  string
	SourcePublic bool
	Source       []byte
}

// NewBlockEmbed wraps target, which must be detached from any parent.
func NewBlockEmbed(id, title string, public bool, source []byte, target ast.Node) *BlockEmbed {
	n := &BlockEmbed{
		ID:           id,
		SourceTitle:  title,
		SourcePublic: public,
		Source:       source,
	}
	n.AppendChild(n, target)
	return n
}

// Kind implements ast.Node.
func (n *BlockEmbed) Kind() ast.NodeKind { return KindBlockEmbed }

// Dump implements ast.Node. The wrapped subtree is dumped against the
// embed's own source.
func (n *BlockEmbed) Dump(_ []byte, level int) {
	ast.DumpHelper(n, n.Source, level, map[string]string{
		"ID":           n.ID,
		"SourceTitle":  n.SourceTitle,
		"SourcePublic": strconv.FormatBool(n.SourcePublic),
	}, nil)
}
