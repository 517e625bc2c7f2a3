package refindex

import (
	"sort"

	"github.com/yuin/goldmark/ast"

	"github.com/starford/logpub/internal/markdown"
	"github.com/starford/logpub/internal/models"
)

// Entry is one indexed block. The node belongs to the corpus parse and must
// never be mutated or attached elsewhere; use Subtree for a private copy.
type Entry struct {
	Title  string
	Public bool
	Node   ast.Node

	doc  *markdown.Document
	path []int
}

// Subtree returns a detached deep copy of the indexed block.
func (e *Entry) Subtree() ast.Node {
	return e.doc.CopyAt(e.path)
}

// Source returns the bytes the indexed block was parsed from.
func (e *Entry) Source() []byte {
	return e.doc.Source
}

// Index maps block ids to the blocks they tag across the corpus.
type Index struct {
	entries map[string]*Entry
}

// Build indexes pages in order. On a duplicate id the later page wins.
// Public is true only for pages that are exported.
func Build(pages []*models.Page) *Index {
	idx := &Index{entries: make(map[string]*Entry)}
	for _, p := range pages {
		for id, node := range References(p.Doc.Root) {
			idx.entries[id] = &Entry{
				Title:  p.Title,
				Public: p.Exportable(),
				Node:   node,
				doc:    p.Doc,
				path:   markdown.PathOf(p.Doc.Root, node),
			}
		}
	}
	return idx
}

// Lookup returns the entry for id.
func (x *Index) Lookup(id string) (*Entry, bool) {
	e, ok := x.entries[id]
	return e, ok
}

// Len returns the number of indexed ids.
func (x *Index) Len() int {
	return len(x.entries)
}

// IDs returns the indexed ids in sorted order.
func (x *Index) IDs() []string {
	ids := make([]string, 0, len(x.entries))
	for id := range x.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
