// Package parser turns raw document text into a syntax tree. The scan is
// error tolerant: malformed regions become error nodes and a tree is
// always produced. ErrParseFailed is reserved for input the scanner
// cannot shape at all, such as nesting past the depth limit.
package parser

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"gantry/internal/syntax"
)

// ErrParseFailed reports that no tree could be produced. It is a hard
// failure of the scan itself, never a finding about document content.
var ErrParseFailed = errors.New("parse failed")

// Parse scans source into a tree. Any text input yields a tree; the
// error is non-nil only for pathological input (see ErrParseFailed).
func Parse(source string) (*syntax.Tree, error) {
	srcLen, err := safecast.Conv[uint32](len(source))
	if err != nil {
		return nil, fmt.Errorf("%w: source too large: %v", ErrParseFailed, err)
	}
	s := newScanner(source, scanLinesBetween(source, 0, srcLen))
	children := s.blocks(len(s.lines))
	if s.failed {
		return nil, fmt.Errorf("%w: nesting exceeds depth limit", ErrParseFailed)
	}
	return &syntax.Tree{
		Root:   containerNode(syntax.KindDocument, children),
		Source: source,
	}, nil
}

// parseRange scans the line-aligned window source[from:to) and returns
// the top-level nodes found there.
func parseRange(source string, from, to uint32) ([]*syntax.Node, bool) {
	s := newScanner(source, scanLinesBetween(source, from, to))
	children := s.blocks(len(s.lines))
	return children, !s.failed
}
