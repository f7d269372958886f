package diag

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) into the analyzed source.
// Offsets are bytes, not runes or columns.
type Span struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

func NewSpan(start, end uint32) Span {
	if end < start {
		end = start
	}
	return Span{Start: start, End: end}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Contains reports whether the byte offset falls inside the span.
func (s Span) Contains(offset uint32) bool {
	return offset >= s.Start && offset < s.End
}

// Cover returns the smallest span enclosing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

func (s Span) ShiftLeft(n uint32) Span {
	return Span{Start: s.Start - n, End: s.End - n}
}

func (s Span) ShiftRight(n uint32) Span {
	return Span{Start: s.Start + n, End: s.End + n}
}

// Clamp bounds the span to a source of the given length.
func (s Span) Clamp(srcLen uint32) Span {
	if s.Start > srcLen {
		s.Start = srcLen
	}
	if s.End > srcLen {
		s.End = srcLen
	}
	if s.End < s.Start {
		s.End = s.Start
	}
	return s
}
