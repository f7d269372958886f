package syntax

import (
	"testing"

	"gantry/diag"
)

func scalarAt(start, end uint32) *Node {
	return &Node{Kind: KindScalar, Span: diag.Span{Start: start, End: end}}
}

func pairOf(key, value *Node) *Node {
	return &Node{
		Kind:     KindPair,
		Span:     key.Span.Cover(value.Span),
		Children: []*Node{key, value},
	}
}

func mappingOf(pairs ...*Node) *Node {
	m := &Node{Kind: KindMapping, Children: pairs}
	if len(pairs) > 0 {
		m.Span = pairs[0].Span
		for _, p := range pairs[1:] {
			m.Span = m.Span.Cover(p.Span)
		}
	}
	return m
}

func docOf(children ...*Node) *Tree {
	root := &Node{Kind: KindDocument, Children: children}
	if len(children) > 0 {
		root.Span = children[0].Span
		for _, c := range children[1:] {
			root.Span = root.Span.Cover(c.Span)
		}
	}
	return &Tree{Root: root}
}

func TestNode_Accessors(t *testing.T) {
	source := "on: push"
	key := scalarAt(0, 2)
	value := scalarAt(4, 8)
	p := pairOf(key, value)

	if got := p.Key().Text(source); got != "on" {
		t.Errorf("Key().Text() = %q, want %q", got, "on")
	}
	if got := p.Value().Text(source); got != "push" {
		t.Errorf("Value().Text() = %q, want %q", got, "push")
	}

	item := &Node{Kind: KindItem, Span: value.Span, Children: []*Node{value}}
	if got := item.Value(); got != value {
		t.Errorf("item.Value() = %+v, want the payload scalar", got)
	}

	if scalarAt(0, 2).Value() != nil {
		t.Error("scalar.Value() should be nil")
	}
	var nilNode *Node
	if nilNode.Key() != nil || nilNode.Value() != nil || nilNode.Text(source) != "" {
		t.Error("nil node accessors should degrade to zero values")
	}
}

func TestNode_TextClamping(t *testing.T) {
	source := "abc"
	n := scalarAt(1, 100)
	if got := n.Text(source); got != "bc" {
		t.Errorf("Text() = %q, want %q", got, "bc")
	}
}

func TestNode_CloneShifted(t *testing.T) {
	value := scalarAt(4, 8)
	p := pairOf(scalarAt(0, 2), value)

	shifted := p.CloneShifted(10)
	if shifted.Span.Start != 10 || shifted.Span.End != 18 {
		t.Errorf("shifted span = %v, want 10..18", shifted.Span)
	}
	if shifted.Children[1].Span.Start != 14 {
		t.Errorf("shifted child start = %d, want 14", shifted.Children[1].Span.Start)
	}
	if p.Span.Start != 0 || p.Children[1].Span.Start != 4 {
		t.Error("CloneShifted mutated the receiver")
	}

	back := shifted.CloneShifted(-10)
	if back.Span != p.Span {
		t.Errorf("negative shift = %v, want %v", back.Span, p.Span)
	}
}

func TestWalk_PreorderAndSkip(t *testing.T) {
	key := scalarAt(0, 2)
	value := scalarAt(4, 8)
	p := pairOf(key, value)
	tree := docOf(mappingOf(p))

	var kinds []Kind
	Walk(tree.Root, func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	want := []Kind{KindDocument, KindMapping, KindPair, KindScalar, KindScalar}
	if len(kinds) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(kinds), len(want))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("visit %d = %v, want %v", i, kinds[i], want[i])
		}
	}

	var count int
	Walk(tree.Root, func(n *Node) bool {
		count++
		return n.Kind != KindPair
	})
	if count != 3 {
		t.Errorf("walk with pair skip visited %d, want 3", count)
	}
}

func TestTree_HasErrors(t *testing.T) {
	clean := docOf(mappingOf(pairOf(scalarAt(0, 2), scalarAt(4, 8))))
	if clean.HasErrors() {
		t.Error("clean tree reported errors")
	}

	withErr := docOf(&Node{Kind: KindError, Span: diag.Span{Start: 0, End: 5}})
	if !withErr.HasErrors() {
		t.Error("error node not detected")
	}

	missingValue := docOf(mappingOf(pairOf(
		scalarAt(0, 2),
		&Node{Kind: KindMissing, Span: diag.Span{Start: 3, End: 3}},
	)))
	if missingValue.HasErrors() {
		t.Error("missing value is ordinary YAML, not a scan error")
	}

	var empty *Tree
	if empty.HasErrors() {
		t.Error("nil tree reported errors")
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"on", "on"},
		{`"on"`, "on"},
		{"'jobs'", "jobs"},
		{"  name ", "name"},
		{`"unterminated`, `"unterminated`},
		{`''`, ""},
		{`"`, `"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanKey(tt.in); got != tt.want {
				t.Errorf("CleanKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindValue(t *testing.T) {
	source := "name: ci\njobs: {}"
	namePair := pairOf(scalarAt(0, 4), scalarAt(6, 8))
	jobsPair := pairOf(scalarAt(9, 13), &Node{Kind: KindMapping, Span: diag.Span{Start: 15, End: 17}})
	m := mappingOf(namePair, jobsPair)

	if got := FindValue(m, source, "name").Text(source); got != "ci" {
		t.Errorf("FindValue(name) = %q, want %q", got, "ci")
	}
	if got := FindValue(m, source, "jobs"); got == nil || got.Kind != KindMapping {
		t.Errorf("FindValue(jobs) = %+v, want mapping node", got)
	}
	if FindValue(m, source, "on") != nil {
		t.Error("FindValue(on) should be nil for absent key")
	}
	if FindValue(namePair, source, "name") != nil {
		t.Error("FindValue on non-mapping should be nil")
	}
}

func TestHasKeyDeep(t *testing.T) {
	source := "jobs:\n  build:\n    runs-on: ubuntu-latest"
	runsOn := pairOf(scalarAt(19, 26), scalarAt(28, 41))
	buildBody := mappingOf(runsOn)
	build := pairOf(scalarAt(8, 13), buildBody)
	jobs := pairOf(scalarAt(0, 4), mappingOf(build))
	tree := docOf(mappingOf(jobs))

	if !HasKeyDeep(tree.Root, source, "runs-on") {
		t.Error("nested runs-on not found")
	}
	if HasKeyDeep(tree.Root, source, "uses") {
		t.Error("found a key that does not exist")
	}
}

func TestLooksLikeWorkflow(t *testing.T) {
	tests := []struct {
		name   string
		source string
		tree   *Tree
		want   bool
	}{
		{
			name:   "on key qualifies",
			source: "on: push",
			tree:   docOf(mappingOf(pairOf(scalarAt(0, 2), scalarAt(4, 8)))),
			want:   true,
		},
		{
			name:   "name plus jobs qualifies",
			source: "name: ci\njobs: {}",
			tree: docOf(mappingOf(
				pairOf(scalarAt(0, 4), scalarAt(6, 8)),
				pairOf(scalarAt(9, 13), &Node{Kind: KindMapping, Span: diag.Span{Start: 15, End: 17}}),
			)),
			want: true,
		},
		{
			name:   "name alone does not qualify",
			source: "name: ci",
			tree:   docOf(mappingOf(pairOf(scalarAt(0, 4), scalarAt(6, 8)))),
			want:   false,
		},
		{
			name:   "plain data does not qualify",
			source: "key: value",
			tree:   docOf(mappingOf(pairOf(scalarAt(0, 3), scalarAt(5, 10)))),
			want:   false,
		},
		{
			name:   "no top-level mapping",
			source: "just a scalar",
			tree:   docOf(scalarAt(0, 13)),
			want:   false,
		},
		{
			name:   "quoted on key qualifies",
			source: `"on": push`,
			tree:   docOf(mappingOf(pairOf(scalarAt(0, 4), scalarAt(6, 10)))),
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeWorkflow(tt.tree, tt.source); got != tt.want {
				t.Errorf("LooksLikeWorkflow() = %v, want %v", got, tt.want)
			}
		})
	}
}
