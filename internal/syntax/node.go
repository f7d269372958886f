package syntax

import (
	"gantry/diag"
)

// Kind is the closed set of node variants a scan can produce. Consumers
// switch over it exhaustively; there are no out-of-band node types.
type Kind uint8

const (
	// KindDocument is the root. Children are the top-level nodes.
	KindDocument Kind = iota
	// KindMapping holds KindPair children.
	KindMapping
	// KindPair always has exactly two children: a key scalar and a value
	// node. An absent value is a KindMissing child, never a nil.
	KindPair
	// KindSequence holds KindItem children.
	KindSequence
	// KindItem always has exactly one child, possibly KindMissing.
	KindItem
	// KindScalar is a leaf. Its span includes surrounding quotes.
	KindScalar
	// KindError marks a region the scanner could not shape. The tree
	// around it is still well formed.
	KindError
	// KindMissing is a zero-length placeholder for a structurally
	// required but absent value.
	KindMissing
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindMapping:
		return "mapping"
	case KindPair:
		return "pair"
	case KindSequence:
		return "sequence"
	case KindItem:
		return "item"
	case KindScalar:
		return "scalar"
	case KindError:
		return "error"
	case KindMissing:
		return "missing"
	}
	return "unknown"
}

// Node is one vertex of the syntax tree. Nodes are immutable after the
// scan finishes; rules may share a tree across goroutines freely.
type Node struct {
	Kind     Kind
	Span     diag.Span
	Children []*Node
}

// Key returns the key scalar of a pair node.
func (n *Node) Key() *Node {
	if n == nil || n.Kind != KindPair || len(n.Children) < 1 {
		return nil
	}
	return n.Children[0]
}

// Value returns the value node of a pair, or the payload of a sequence
// item. The result may be a KindMissing node; it is nil only when n is
// not a pair or item.
func (n *Node) Value() *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindPair:
		if len(n.Children) < 2 {
			return nil
		}
		return n.Children[1]
	case KindItem:
		if len(n.Children) < 1 {
			return nil
		}
		return n.Children[0]
	}
	return nil
}

// Text slices the analyzed source covered by the node's span.
func (n *Node) Text(source string) string {
	if n == nil {
		return ""
	}
	s := n.Span.Clamp(uint32(len(source)))
	return source[s.Start:s.End]
}

// CloneShifted returns a deep copy with every span moved by delta bytes.
// The receiver is left untouched, so an old tree stays valid while its
// reusable blocks are grafted into a new one.
func (n *Node) CloneShifted(delta int64) *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind: n.Kind,
		Span: diag.Span{
			Start: uint32(int64(n.Span.Start) + delta),
			End:   uint32(int64(n.Span.End) + delta),
		},
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.CloneShifted(delta)
		}
	}
	return out
}
