package parser

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// maxDepth bounds block and flow nesting. Exceeding it is the one
// condition that fails a scan outright instead of producing error nodes.
const maxDepth = 500

type scanner struct {
	src    string
	lines  []line
	pos    int // current line index
	depth  int
	failed bool
}

func newScanner(src string, lines []line) *scanner {
	return &scanner{src: src, lines: lines}
}

// --- line classification ---

func (s *scanner) blank(ln line) bool {
	return ln.start+ln.indent >= ln.end
}

func (s *scanner) commentOnly(ln line) bool {
	return !s.blank(ln) && s.src[ln.start+ln.indent] == '#'
}

func (s *scanner) skippable(ln line) bool {
	return s.blank(ln) || s.commentOnly(ln)
}

func (s *scanner) docMarker(ln line) bool {
	a, b := s.contentBounds(ln)
	t := s.src[a:b]
	return t == "---" || t == "..."
}

// contentBounds returns [a, b) for the line's content with the trailing
// comment and padding removed.
func (s *scanner) contentBounds(ln line) (uint32, uint32) {
	a := ln.start + ln.indent
	b := s.commentStart(a, ln.end)
	for b > a && (s.src[b-1] == ' ' || s.src[b-1] == '\t') {
		b--
	}
	return a, b
}

// commentStart finds the beginning of a trailing comment between a and b,
// honoring single and double quotes. Returns b when there is none.
func (s *scanner) commentStart(a, b uint32) uint32 {
	var quote byte
	for i := a; i < b; i++ {
		c := s.src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '\\' && quote == '"' {
				i++
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#' && (i == a || s.src[i-1] == ' ' || s.src[i-1] == '\t'):
			return i
		}
	}
	return b
}

func (s *scanner) seqItemAt(a, b uint32) bool {
	return a < b && s.src[a] == '-' && (a+1 == b || s.src[a+1] == ' ' || s.src[a+1] == '\t')
}

// findSeparator locates the colon splitting a key from its value,
// skipping quoted and flow regions. A colon separates only when followed
// by whitespace or the end of content.
func (s *scanner) findSeparator(a, b uint32) (uint32, bool) {
	var quote byte
	depth := 0
	for i := a; i < b; i++ {
		c := s.src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else if c == '\\' && quote == '"' {
				i++
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
		case c == ':' && depth == 0:
			if i+1 == b || s.src[i+1] == ' ' || s.src[i+1] == '\t' {
				return i, true
			}
		}
	}
	return 0, false
}

// nextSignificant returns the index of the next non-blank, non-comment
// line at or after pos, or limit when none remains.
func (s *scanner) nextSignificant(limit int) int {
	idx := s.pos
	for idx < limit && s.skippable(s.lines[idx]) {
		idx++
	}
	return idx
}

func (s *scanner) fail(limit int) {
	s.failed = true
	s.pos = limit
}

// --- node construction ---

func scalarNode(a, b uint32) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindScalar, Span: diag.Span{Start: a, End: b}}
}

func errorNode(a, b uint32) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindError, Span: diag.Span{Start: a, End: b}}
}

func missingAt(off uint32) *syntax.Node {
	return &syntax.Node{Kind: syntax.KindMissing, Span: diag.Span{Start: off, End: off}}
}

func itemNode(dash uint32, child *syntax.Node) *syntax.Node {
	span := diag.Span{Start: dash, End: dash + 1}.Cover(child.Span)
	return &syntax.Node{Kind: syntax.KindItem, Span: span, Children: []*syntax.Node{child}}
}

func containerNode(kind syntax.Kind, children []*syntax.Node) *syntax.Node {
	n := &syntax.Node{Kind: kind, Children: children}
	if len(children) > 0 {
		n.Span = children[0].Span
		for _, c := range children[1:] {
			n.Span = n.Span.Cover(c.Span)
		}
	}
	return n
}

// --- block structure ---

// blocks parses every top-level block in the line window.
func (s *scanner) blocks(limit int) []*syntax.Node {
	var out []*syntax.Node
	for s.pos < limit && !s.failed {
		ln := s.lines[s.pos]
		if s.skippable(ln) || s.docMarker(ln) {
			s.pos++
			continue
		}
		out = append(out, s.block(limit))
	}
	return out
}

// block parses one block starting at the current line, using that line's
// indentation as the block level.
func (s *scanner) block(limit int) *syntax.Node {
	if s.depth >= maxDepth {
		ln := s.lines[s.pos]
		s.fail(limit)
		return errorNode(ln.start, ln.end)
	}
	s.depth++
	defer func() { s.depth-- }()

	ln := s.lines[s.pos]
	if ln.tab {
		s.pos++
		return errorNode(ln.start, ln.end)
	}
	a, b := s.contentBounds(ln)
	if s.seqItemAt(a, b) {
		return s.sequence(ln.indent, limit)
	}
	if _, ok := s.findSeparator(a, b); ok {
		return s.mapping(ln.indent, limit)
	}
	return s.inlineValue(a, b, ln.indent, limit)
}

func (s *scanner) mapping(ind uint32, limit int) *syntax.Node {
	return s.finishMapping(nil, ind, limit)
}

// finishMapping collects pairs at the given indentation until a dedent,
// document marker, or the window end. Lines that cannot be shaped into
// pairs become error nodes without aborting the mapping.
func (s *scanner) finishMapping(pairs []*syntax.Node, ind uint32, limit int) *syntax.Node {
	for s.pos < limit && !s.failed {
		ln := s.lines[s.pos]
		if s.skippable(ln) {
			s.pos++
			continue
		}
		if ln.indent < ind || s.docMarker(ln) {
			break
		}
		a, b := s.contentBounds(ln)
		if ln.tab || ln.indent > ind || s.seqItemAt(a, b) {
			s.pos++
			pairs = append(pairs, errorNode(a, b))
			continue
		}
		colon, ok := s.findSeparator(a, b)
		if !ok {
			s.pos++
			pairs = append(pairs, errorNode(a, b))
			continue
		}
		pairs = append(pairs, s.pair(a, b, colon, ind, limit))
	}
	return containerNode(syntax.KindMapping, pairs)
}

// pair parses one key line plus whatever its value consumes. The current
// line holds the key; a, b bound the line content and colon is the
// separator offset.
func (s *scanner) pair(a, b, colon, ind uint32, limit int) *syntax.Node {
	keyEnd := colon
	for keyEnd > a && (s.src[keyEnd-1] == ' ' || s.src[keyEnd-1] == '\t') {
		keyEnd--
	}
	if keyEnd == a {
		s.pos++
		return errorNode(a, b)
	}
	key := scalarNode(a, keyEnd)
	value := s.valueAfter(colon+1, b, ind, limit)
	return &syntax.Node{
		Kind:     syntax.KindPair,
		Span:     key.Span.Cover(value.Span),
		Children: []*syntax.Node{key, value},
	}
}

// valueAfter parses the value of a pair whose key line is current. vfrom
// points just past the colon; b is the end of the line content.
func (s *scanner) valueAfter(vfrom, b, ind uint32, limit int) *syntax.Node {
	va := vfrom
	for va < b && (s.src[va] == ' ' || s.src[va] == '\t') {
		va++
	}
	if va < b {
		return s.inlineValue(va, b, ind, limit)
	}

	// Nothing on the key line: a deeper block, a sequence hanging at the
	// key's own level, or no value at all.
	s.pos++
	anchor := min(vfrom, b)
	idx := s.nextSignificant(limit)
	if idx >= limit {
		return missingAt(anchor)
	}
	nxt := s.lines[idx]
	if s.docMarker(nxt) || nxt.indent < ind {
		return missingAt(anchor)
	}
	if nxt.indent > ind {
		s.pos = idx
		return s.block(limit)
	}
	na, nb := s.contentBounds(nxt)
	if s.seqItemAt(na, nb) {
		s.pos = idx
		return s.sequence(ind, limit)
	}
	return missingAt(anchor)
}

// inlineValue parses a value that starts in the current line at va. It
// consumes the current line and any continuation lines the value claims.
// ind is the owning line's indentation, the threshold for folding and
// block scalar content.
func (s *scanner) inlineValue(va, b, ind uint32, limit int) *syntax.Node {
	switch s.src[va] {
	case '|', '>':
		if n, ok := s.blockScalar(va, b, ind, limit); ok {
			return n
		}
	case '[', '{':
		return s.flow(va, limit)
	}

	quoted := s.src[va] == '"' || s.src[va] == '\''
	s.pos++
	end := b
	if !quoted {
		// Plain scalars fold strictly deeper continuation lines.
		for s.pos < limit {
			ln := s.lines[s.pos]
			if s.skippable(ln) || ln.tab || ln.indent <= ind {
				break
			}
			_, fb := s.contentBounds(ln)
			end = fb
			s.pos++
		}
	}
	return scalarNode(va, end)
}

// blockScalar parses a literal or folded scalar. It reports ok=false when
// the indicator line carries trailing junk, in which case the caller
// falls back to a plain scalar.
func (s *scanner) blockScalar(va, b, ind uint32, limit int) (*syntax.Node, bool) {
	i := va + 1
	for i < b && (s.src[i] == '+' || s.src[i] == '-' || (s.src[i] >= '0' && s.src[i] <= '9')) {
		i++
	}
	for i < b && (s.src[i] == ' ' || s.src[i] == '\t') {
		i++
	}
	if i != b {
		return nil, false
	}

	s.pos++
	end := b
	for s.pos < limit {
		ln := s.lines[s.pos]
		if s.blank(ln) {
			s.pos++
			continue
		}
		if ln.indent <= ind {
			break
		}
		// Hash characters are literal content inside block scalars.
		end = ln.end
		s.pos++
	}
	return scalarNode(va, end), true
}

func (s *scanner) sequence(ind uint32, limit int) *syntax.Node {
	var items []*syntax.Node
	for s.pos < limit && !s.failed {
		ln := s.lines[s.pos]
		if s.skippable(ln) {
			s.pos++
			continue
		}
		if ln.indent < ind || s.docMarker(ln) {
			break
		}
		a, b := s.contentBounds(ln)
		if ln.indent == ind && !ln.tab && !s.seqItemAt(a, b) {
			break
		}
		if ln.tab || ln.indent > ind {
			s.pos++
			items = append(items, errorNode(a, b))
			continue
		}
		items = append(items, s.item(ln, a, b, ind, limit))
	}
	return containerNode(syntax.KindSequence, items)
}

// item parses one "- ..." entry. The dash sits at a on the current line.
func (s *scanner) item(ln line, a, b, ind uint32, limit int) *syntax.Node {
	va := a + 1
	for va < b && (s.src[va] == ' ' || s.src[va] == '\t') {
		va++
	}
	if va >= b {
		// Bare dash: the payload is a deeper block or absent.
		s.pos++
		idx := s.nextSignificant(limit)
		if idx < limit && !s.docMarker(s.lines[idx]) && s.lines[idx].indent > ind {
			s.pos = idx
			return itemNode(a, s.block(limit))
		}
		return itemNode(a, missingAt(a+1))
	}

	// Inline mapping entries ("- name: build") continue at the column of
	// the inline key.
	if colon, ok := s.findSeparator(va, b); ok {
		effInd := va - ln.start
		first := s.pair(va, b, colon, effInd, limit)
		return itemNode(a, s.finishMapping([]*syntax.Node{first}, effInd, limit))
	}
	return itemNode(a, s.inlineValue(va, b, ind, limit))
}
