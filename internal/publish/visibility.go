package publish

import (
	"github.com/yuin/goldmark/ast"

	"github.com/starford/logpub/internal/markdown"
)

// MarkResolvableLinks sets Resolved on every wiki link under root, embedded
// content included: true exactly when the linked title is in public. It
// returns the distinct titles of the links left dangling, in document order.
func MarkResolvableLinks(root ast.Node, public map[string]bool) []string {
	var dangling []string
	seen := make(map[string]bool)
	_ = markdown.Walk(root, func(n ast.Node) (ast.WalkStatus, error) {
		link, ok := n.(*markdown.WikiLink)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Resolved = public[link.Page]
		if !link.Resolved && !seen[link.Page] {
			seen[link.Page] = true
			dangling = append(dangling, link.Page)
		}
		return ast.WalkSkipChildren, nil
	})
	return dangling
}
