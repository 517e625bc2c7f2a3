package publish

import (
	"log/slog"
	"slices"

	"github.com/yuin/goldmark/ast"

	"github.com/starford/logpub/internal/markdown"
	"github.com/starford/logpub/internal/refindex"
)

// Reasons a block reference stays unresolved.
const (
	ReasonMissing = "missing"
	ReasonCycle   = "cycle"
	ReasonDepth   = "depth"
)

// Unresolved is a block reference left in place by the embedding pass.
type Unresolved struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// EmbedResult lists what one embedding pass could not resolve.
type EmbedResult struct {
	Unresolved []Unresolved
	// Dangling holds the unresolved wiki link titles found in embedded
	// content.
	Dangling []string
}

// Embedder replaces block references with copies of the blocks they point
// to. It only reads the index, so one Embedder may serve many pages
// concurrently.
type Embedder struct {
	Index  *refindex.Index
	Public map[string]bool
	// MaxDepth bounds nested embeds. Zero or less means no bound; cycles are
	// cut regardless.
	MaxDepth int
	Logger   *slog.Logger
}

// Embed rewrites root in place. A paragraph made only of a block reference
// is replaced by the embed; anywhere else (headings, table cells) the
// reference node itself is. A reference whose id is unknown, already being
// expanded by an enclosing embed, or too deep is left as is and reported.
func (e *Embedder) Embed(root ast.Node) EmbedResult {
	var res EmbedResult
	e.rewrite(root, nil, &res)
	return res
}

// EmbedBlock returns the embed for id on its own, with nested references
// resolved.
func (e *Embedder) EmbedBlock(id string) (*markdown.BlockEmbed, EmbedResult, bool) {
	var res EmbedResult
	emb, reason := e.resolve(id, nil)
	if emb == nil {
		res.Unresolved = append(res.Unresolved, Unresolved{ID: id, Reason: reason})
		return nil, res, false
	}
	e.expand(emb, []string{id}, &res)
	return emb, res, true
}

func (e *Embedder) rewrite(n ast.Node, chain []string, res *EmbedResult) {
	_ = markdown.Walk(n, func(c ast.Node) (ast.WalkStatus, error) {
		target, ref := referenceSite(c)
		if ref == nil {
			return ast.WalkContinue, nil
		}
		emb, reason := e.resolve(ref.ID, chain)
		if emb == nil {
			res.Unresolved = append(res.Unresolved, Unresolved{ID: ref.ID, Reason: reason})
			e.logUnresolved(ref.ID, reason)
			return ast.WalkSkipChildren, nil
		}
		parent := target.Parent()
		parent.ReplaceChild(parent, target, emb)
		e.expand(emb, append(slices.Clip(chain), ref.ID), res)
		return ast.WalkSkipChildren, nil
	})
}

// expand resolves links and nested references inside a fresh embed.
func (e *Embedder) expand(emb *markdown.BlockEmbed, chain []string, res *EmbedResult) {
	for _, title := range MarkResolvableLinks(emb, e.Public) {
		if !slices.Contains(res.Dangling, title) {
			res.Dangling = append(res.Dangling, title)
		}
	}
	e.rewrite(emb.FirstChild(), chain, res)
}

func (e *Embedder) resolve(id string, chain []string) (*markdown.BlockEmbed, string) {
	if slices.Contains(chain, id) {
		return nil, ReasonCycle
	}
	if e.MaxDepth > 0 && len(chain) >= e.MaxDepth {
		return nil, ReasonDepth
	}
	entry, ok := e.Index.Lookup(id)
	if !ok {
		return nil, ReasonMissing
	}
	sub := entry.Subtree()
	if sub == nil {
		return nil, ReasonMissing
	}
	return markdown.NewBlockEmbed(id, entry.Title, entry.Public, entry.Source(), sub), ""
}

func (e *Embedder) logUnresolved(id, reason string) {
	if e.Logger == nil {
		return
	}
	if reason == ReasonMissing {
		e.Logger.Debug("embed: unresolved reference", slog.String("id", id))
		return
	}
	e.Logger.Warn("embed: reference not expanded", slog.String("id", id), slog.String("reason", reason))
}

// referenceSite returns the node to replace for n and the reference it
// stands for, or a nil reference.
func referenceSite(n ast.Node) (ast.Node, *markdown.BlockReference) {
	if ref := soleReference(n); ref != nil {
		return n, ref
	}
	if ref, ok := n.(*markdown.BlockReference); ok {
		return n, ref
	}
	return nil, nil
}

// soleReference returns the block reference that makes up all of a
// paragraph's content.
func soleReference(n ast.Node) *markdown.BlockReference {
	if !markdown.IsParagraph(n) || n.ChildCount() != 1 {
		return nil
	}
	ref, _ := n.FirstChild().(*markdown.BlockReference)
	return ref
}
