package parser

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// flow parses a flow collection starting at off on the current line. Flow
// syntax may span lines; every line the collection touches is consumed.
// Unbalanced collections become a single error node to the window end.
func (s *scanner) flow(off uint32, limit int) *syntax.Node {
	lim := s.lines[limit-1].end
	n, end, ok := s.flowNode(off, lim, s.depth)
	if !ok || n == nil {
		if end <= off {
			end = min(off+1, lim)
		}
		n = errorNode(off, end)
	}
	s.advanceTo(end)
	return n
}

// advanceTo consumes lines up to and including the one containing the
// last byte before end.
func (s *scanner) advanceTo(end uint32) {
	for s.pos < len(s.lines) && s.lines[s.pos].end < end {
		s.pos++
	}
	if s.pos < len(s.lines) && s.lines[s.pos].start < end {
		s.pos++
	}
}

func (s *scanner) flowNode(i, lim uint32, depth int) (*syntax.Node, uint32, bool) {
	if depth >= maxDepth {
		s.failed = true
		return nil, lim, false
	}
	switch s.src[i] {
	case '[':
		return s.flowSeq(i, lim, depth)
	case '{':
		return s.flowMap(i, lim, depth)
	case '"', '\'':
		return s.flowQuoted(i, lim)
	default:
		n, end := s.flowPlain(i, lim)
		return n, end, true
	}
}

func (s *scanner) flowSeq(open, lim uint32, depth int) (*syntax.Node, uint32, bool) {
	var items []*syntax.Node
	i := open + 1
	expect := true
	for {
		i = s.flowSkip(i, lim)
		if i >= lim {
			return nil, lim, false
		}
		switch c := s.src[i]; {
		case c == ']':
			if expect && len(items) > 0 {
				// Trailing comma leaves a dangling empty entry.
				items = append(items, itemAt(i))
			}
			n := containerNode(syntax.KindSequence, items)
			n.Span = diag.Span{Start: open, End: i + 1}
			return n, i + 1, true
		case c == ',':
			if expect {
				items = append(items, itemAt(i))
			}
			expect = true
			i++
		case !expect:
			return nil, i, false
		default:
			child, ni, ok := s.flowNode(i, lim, depth+1)
			if !ok {
				return nil, ni, false
			}
			items = append(items, &syntax.Node{
				Kind:     syntax.KindItem,
				Span:     child.Span,
				Children: []*syntax.Node{child},
			})
			i = ni
			expect = false
		}
	}
}

// itemAt is an empty flow entry: an item wrapping a missing payload.
func itemAt(off uint32) *syntax.Node {
	return &syntax.Node{
		Kind:     syntax.KindItem,
		Span:     diag.Span{Start: off, End: off},
		Children: []*syntax.Node{missingAt(off)},
	}
}

func (s *scanner) flowMap(open, lim uint32, depth int) (*syntax.Node, uint32, bool) {
	var pairs []*syntax.Node
	i := open + 1
	for {
		i = s.flowSkip(i, lim)
		if i >= lim {
			return nil, lim, false
		}
		switch s.src[i] {
		case '}':
			n := containerNode(syntax.KindMapping, pairs)
			n.Span = diag.Span{Start: open, End: i + 1}
			return n, i + 1, true
		case ',':
			i++
			continue
		}

		key, ni, ok := s.flowNode(i, lim, depth+1)
		if !ok {
			return nil, ni, false
		}
		i = s.flowSkip(ni, lim)
		value := missingAt(min(i, lim))
		if i < lim && s.src[i] == ':' {
			i = s.flowSkip(i+1, lim)
			if i >= lim {
				return nil, lim, false
			}
			if s.src[i] != ',' && s.src[i] != '}' {
				value, i, ok = s.flowNode(i, lim, depth+1)
				if !ok {
					return nil, i, false
				}
			} else {
				value = missingAt(i)
			}
		}
		pairs = append(pairs, &syntax.Node{
			Kind:     syntax.KindPair,
			Span:     key.Span.Cover(value.Span),
			Children: []*syntax.Node{key, value},
		})
	}
}

func (s *scanner) flowQuoted(i, lim uint32) (*syntax.Node, uint32, bool) {
	quote := s.src[i]
	j := i + 1
	for j < lim {
		c := s.src[j]
		if c == quote {
			if quote == '\'' && j+1 < lim && s.src[j+1] == '\'' {
				j += 2
				continue
			}
			return scalarNode(i, j+1), j + 1, true
		}
		if c == '\\' && quote == '"' {
			j++
		}
		j++
	}
	return nil, lim, false
}

// flowPlain scans an unquoted flow scalar. Colons stay inside the scalar
// unless followed by whitespace or a flow delimiter.
func (s *scanner) flowPlain(i, lim uint32) (*syntax.Node, uint32) {
	j := i
loop:
	for j < lim {
		switch c := s.src[j]; c {
		case ',', '[', ']', '{', '}', '\n', '\r':
			break loop
		case ':':
			if j+1 >= lim {
				break loop
			}
			switch s.src[j+1] {
			case ' ', '\t', ',', ']', '}', '\n', '\r':
				break loop
			}
		case '#':
			if j > i && (s.src[j-1] == ' ' || s.src[j-1] == '\t') {
				break loop
			}
		}
		j++
	}
	end := j
	for end > i && (s.src[end-1] == ' ' || s.src[end-1] == '\t') {
		end--
	}
	return scalarNode(i, end), j
}

// flowSkip moves past whitespace, line breaks, and comments inside a
// flow collection.
func (s *scanner) flowSkip(i, lim uint32) uint32 {
	for i < lim {
		switch s.src[i] {
		case ' ', '\t', '\r', '\n':
			i++
		case '#':
			if i == 0 || s.src[i-1] == ' ' || s.src[i-1] == '\t' || s.src[i-1] == '\n' || s.src[i-1] == '\r' {
				for i < lim && s.src[i] != '\n' {
					i++
				}
			} else {
				return i
			}
		default:
			return i
		}
	}
	return i
}
