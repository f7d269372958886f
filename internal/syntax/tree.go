package syntax

// Tree is the result of scanning one document. The root is always a
// KindDocument node, even for empty or fully malformed input. Source is
// the exact text the tree was scanned from; spans index into it.
type Tree struct {
	Root   *Node
	Source string
}

// Walk visits nodes in preorder. Returning false from fn skips the
// node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// HasErrors reports whether any error node exists in the tree. Missing
// nodes do not count: an absent value is ordinary YAML, not a scan
// failure.
func (t *Tree) HasErrors() bool {
	if t == nil || t.Root == nil {
		return false
	}
	found := false
	Walk(t.Root, func(n *Node) bool {
		if n.Kind == KindError {
			found = true
			return false
		}
		return !found
	})
	return found
}

// TopLevelMapping returns the first mapping child of the document root,
// or nil when the document has none.
func (t *Tree) TopLevelMapping() *Node {
	if t == nil || t.Root == nil {
		return nil
	}
	for _, c := range t.Root.Children {
		if c.Kind == KindMapping {
			return c
		}
	}
	return nil
}
