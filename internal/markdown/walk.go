package markdown

import "github.com/yuin/goldmark/ast"

// Walker is called for every node in pre-order.
type Walker func(n ast.Node) (ast.WalkStatus, error)

// Walk visits n and its descendants. Unlike ast.Walk it tolerates the
// visitor replacing n's children, or n itself, as long as it returns
// ast.WalkSkipChildren for a node it detached.
func Walk(n ast.Node, fn Walker) error {
	_, err := walk(n, fn)
	return err
}

func walk(n ast.Node, fn Walker) (ast.WalkStatus, error) {
	status, err := fn(n)
	if err != nil || status == ast.WalkStop {
		return ast.WalkStop, err
	}
	if status == ast.WalkSkipChildren {
		return ast.WalkContinue, nil
	}
	for c := n.FirstChild(); c != nil; {
		next := c.NextSibling()
		if s, err := walk(c, fn); err != nil || s == ast.WalkStop {
			return ast.WalkStop, err
		}
		c = next
	}
	return ast.WalkContinue, nil
}

// PathOf returns the child indexes leading from root down to n, or nil if n
// is not a descendant of root.
func PathOf(root, n ast.Node) []int {
	var rev []int
	for c := n; c != root; c = c.Parent() {
		p := c.Parent()
		if p == nil {
			return nil
		}
		i := 0
		for s := p.FirstChild(); s != c; s = s.NextSibling() {
			i++
		}
		rev = append(rev, i)
	}
	path := make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// NodeAt follows path down from root.
func NodeAt(root ast.Node, path []int) ast.Node {
	n := root
	for _, i := range path {
		if i < 0 || i >= n.ChildCount() {
			return nil
		}
		n = n.FirstChild()
		for ; i > 0; i-- {
			n = n.NextSibling()
		}
	}
	return n
}
