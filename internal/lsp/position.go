package lsp

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"gantry/diag"
)

// lineIndex maps byte offsets of one document to LSP positions. LSP
// character counts are UTF-16 code units, so multi-byte runes shift
// the column independently of the byte offset.
type lineIndex struct {
	text   string
	starts []int // byte offset of each line start, starts[0] == 0
}

func newLineIndex(text string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{text: text, starts: starts}
}

// position converts a byte offset, clamped to the document, into a
// line and UTF-16 column.
func (ix *lineIndex) position(offset int) position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(ix.text) {
		offset = len(ix.text)
	}
	line := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	}) - 1
	col := 0
	for _, r := range ix.text[ix.starts[line]:offset] {
		col += utf16.RuneLen(r)
	}
	return position{Line: line, Character: col}
}

// rangeFor converts a diagnostic span. A zero-width span widens to one
// rune when possible so clients render a visible marker.
func (ix *lineIndex) rangeFor(span diag.Span) lspRange {
	start, end := int(span.Start), int(span.End)
	if end <= start && start < len(ix.text) {
		_, size := utf8.DecodeRuneInString(ix.text[start:])
		end = start + size
	}
	return lspRange{Start: ix.position(start), End: ix.position(end)}
}
