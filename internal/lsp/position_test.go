package lsp

import (
	"strings"
	"testing"

	"gantry/diag"
)

func TestLineIndex_Position(t *testing.T) {
	// "héllo" is 6 bytes but 5 UTF-16 units; the emoji is 4 bytes and
	// 2 units.
	text := "héllo: world\nname: 🚀 launch\non: push\n"
	ix := newLineIndex(text)

	tests := []struct {
		name   string
		offset int
		want   position
	}{
		{"start", 0, position{Line: 0, Character: 0}},
		{"after accent", strings.Index(text, "llo"), position{Line: 0, Character: 2}},
		{"line two", strings.Index(text, "name"), position{Line: 1, Character: 0}},
		{"after emoji", strings.Index(text, "launch"), position{Line: 1, Character: 9}},
		{"line three", strings.Index(text, "on: push"), position{Line: 2, Character: 0}},
		{"end of text", len(text), position{Line: 3, Character: 0}},
		{"clamped past end", len(text) + 10, position{Line: 3, Character: 0}},
		{"clamped negative", -1, position{Line: 0, Character: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ix.position(tt.offset); got != tt.want {
				t.Errorf("position(%d) = %+v, want %+v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestLineIndex_RangeFor(t *testing.T) {
	text := "on: push\njobs:\n"
	ix := newLineIndex(text)

	span := diag.Span{Start: 4, End: 8}
	r := ix.rangeFor(span)
	want := lspRange{Start: position{0, 4}, End: position{0, 8}}
	if r != want {
		t.Errorf("rangeFor(%v) = %+v, want %+v", span, r, want)
	}

	// Zero-width span widens to one rune.
	r = ix.rangeFor(diag.Span{Start: 4, End: 4})
	if r.Start == r.End {
		t.Errorf("zero-width span stayed empty: %+v", r)
	}
}
