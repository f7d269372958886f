package parser

import (
	"gantry/internal/syntax"
)

// ParseIncremental scans source, reusing entries of the old tree's
// top-level mapping that are untouched by the edit. The result is always
// equivalent to a fresh Parse of source; reuse is an optimization only,
// and any structural doubt falls back to the full scan.
//
// An entry is reused when every line that determined its shape lies in
// the unchanged prefix or suffix of the edit. For the prefix that means
// the entry's following sibling also begins on an unchanged line: the
// sibling's line is what sealed the entry's extent. Suffix entries are
// deep-copied with spans rebased by the length delta.
func ParseIncremental(source string, old *syntax.Tree) (*syntax.Tree, error) {
	if old == nil || old.Root == nil {
		return Parse(source)
	}
	if old.Source == source {
		return old, nil
	}
	// Only the common shape benefits from reuse: one top-level mapping
	// holding column-zero entries.
	if len(old.Root.Children) != 1 || old.Root.Children[0].Kind != syntax.KindMapping {
		return Parse(source)
	}
	top := old.Root.Children[0]
	pairs := top.Children
	if len(pairs) < 2 {
		return Parse(source)
	}

	oldSrc := old.Source
	p := commonPrefix(oldSrc, source)
	cut := lineStartBefore(source, p)

	// Entries sealed inside the unchanged prefix.
	k := 0
	for k+1 < len(pairs) && pairs[k].Span.End <= cut && pairs[k+1].Span.Start < cut {
		k++
	}

	// Entries starting on unchanged suffix lines at column zero.
	maxSfx := min(len(oldSrc), len(source)) - int(p)
	if maxSfx < 0 {
		maxSfx = 0
	}
	sfx := commonSuffix(oldSrc, source, maxSfx)
	sEndOld := uint32(len(oldSrc) - sfx)
	delta := int64(len(source)) - int64(len(oldSrc))

	j := len(pairs)
	for j > k {
		start := pairs[j-1].Span.Start
		if start < sEndOld || !isLineStart(oldSrc, start) {
			break
		}
		j--
	}

	if k == 0 && j == len(pairs) {
		return Parse(source)
	}

	rescanFrom := uint32(0)
	if k > 0 {
		rescanFrom = min(cut, lineStartBefore(oldSrc, pairs[k].Span.Start))
	}
	rescanTo := uint32(len(source))
	if j < len(pairs) {
		m := int64(pairs[j].Span.Start) + delta
		if m < int64(rescanFrom) || m > int64(len(source)) || !isLineStart(source, uint32(m)) {
			j = len(pairs)
			rescanTo = uint32(len(source))
		} else {
			rescanTo = uint32(m)
		}
	}

	middle, ok := spliceableEntries(source, rescanFrom, rescanTo, j < len(pairs))
	if !ok {
		return Parse(source)
	}

	entries := make([]*syntax.Node, 0, k+len(middle)+(len(pairs)-j))
	entries = append(entries, pairs[:k]...)
	entries = append(entries, middle...)
	for _, c := range pairs[j:] {
		entries = append(entries, c.CloneShifted(delta))
	}

	mapping := containerNode(syntax.KindMapping, entries)
	return &syntax.Tree{
		Root:   containerNode(syntax.KindDocument, []*syntax.Node{mapping}),
		Source: source,
	}, nil
}

// spliceableEntries parses the rescan window and returns mapping entries
// that can be grafted between reused ones. ok is false whenever the
// window's content would not have parsed the same way inside the
// surrounding top-level mapping.
func spliceableEntries(source string, from, to uint32, suffixReused bool) ([]*syntax.Node, bool) {
	lines := scanLinesBetween(source, from, to)
	s := newScanner(source, lines)

	// Document markers restructure everything above entry level.
	for _, ln := range lines {
		if s.docMarker(ln) {
			return nil, false
		}
	}

	nodes := s.blocks(len(lines))
	if s.failed {
		return nil, false
	}
	if len(nodes) == 0 {
		return nil, true
	}
	if len(nodes) != 1 || nodes[0].Kind != syntax.KindMapping {
		return nil, false
	}
	m := nodes[0]
	if len(m.Children) == 0 {
		return nil, false
	}
	// The window mapping must sit at column zero, like the mapping it is
	// spliced into.
	if !isLineStart(source, m.Children[0].Span.Start) {
		return nil, false
	}
	// An error node near the window edge may mean a construct was cut
	// off mid-flow; a fresh parse would let it claim the suffix lines.
	if suffixReused {
		bad := false
		syntax.Walk(m, func(n *syntax.Node) bool {
			if n.Kind == syntax.KindError {
				bad = true
				return false
			}
			return !bad
		})
		if bad {
			return nil, false
		}
	}
	return m.Children, true
}

func isLineStart(src string, off uint32) bool {
	return off == 0 || (off <= uint32(len(src)) && src[off-1] == '\n')
}

func commonPrefix(a, b string) uint32 {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return uint32(i)
}

// commonSuffix compares from the back, never consuming more than limit
// bytes so prefix and suffix regions cannot overlap.
func commonSuffix(a, b string, limit int) int {
	i := 0
	for i < limit && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}
