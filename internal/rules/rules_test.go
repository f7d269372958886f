package rules

import (
	"strings"
	"testing"

	"gantry/diag"
	"gantry/internal/parser"
	"gantry/internal/syntax"
)

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	tree, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return tree
}

// run invokes one rule directly, bypassing the set-level workflow gate.
func run(t *testing.T, r Rule, src string) []diag.Diagnostic {
	t.Helper()
	return r.Validate(parse(t, src), src)
}

func hasMessage(ds []diag.Diagnostic, substr string) bool {
	for _, d := range ds {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func countMessage(ds []diag.Diagnostic, substr string) int {
	n := 0
	for _, d := range ds {
		if strings.Contains(d.Message, substr) {
			n++
		}
	}
	return n
}

func TestSet_Deterministic(t *testing.T) {
	src := `name: ci
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: echo "::set-output name=x::1"
  build:
    needs: ghost
    steps:
      - name: ""
`
	set := Default()
	tree := parse(t, src)

	first := set.Validate(tree, src)
	for range 20 {
		again := set.Validate(tree, src)
		if len(again.Diagnostics) != len(first.Diagnostics) {
			t.Fatalf("diagnostic count changed: %d vs %d", len(again.Diagnostics), len(first.Diagnostics))
		}
		for i := range first.Diagnostics {
			if again.Diagnostics[i] != first.Diagnostics[i] {
				t.Fatalf("diagnostic %d changed between runs:\n%v\n%v", i, first.Diagnostics[i], again.Diagnostics[i])
			}
		}
	}
}

func TestSet_Ordering(t *testing.T) {
	src := `name: ""
on: push
jobs:
  if:
    runs-on: ubuntu-latest
    steps:
      - run: echo "::set-env name=A::b"
  two:
    needs: two
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout
`
	res := Default().Validate(parse(t, src), src)
	if len(res.Diagnostics) < 4 {
		t.Fatalf("expected several diagnostics, got %d: %v", len(res.Diagnostics), res.Diagnostics)
	}
	for i := 1; i < len(res.Diagnostics); i++ {
		prev, cur := res.Diagnostics[i-1], res.Diagnostics[i]
		if cur.Span.Start < prev.Span.Start {
			t.Errorf("diagnostic %d out of order: start %d after %d", i, cur.Span.Start, prev.Span.Start)
		}
		if cur.Span.Start == prev.Span.Start && cur.Severity < prev.Severity {
			t.Errorf("diagnostic %d severity out of order at start %d", i, cur.Span.Start)
		}
	}
}

func TestSet_WorkflowGate(t *testing.T) {
	// Plain YAML without on/name+jobs: gated rules must stay silent.
	src := "key: value\nother: [1, 2]\n"
	res := Default().Validate(parse(t, src), src)
	for _, d := range res.Diagnostics {
		t.Errorf("unexpected diagnostic on non-workflow document: %v", d)
	}
}

func TestSet_GateViaNameAndJobs(t *testing.T) {
	// No trigger key, but name+jobs qualifies the document, so the
	// schema rule must demand the missing 'on'.
	src := "name: x\njobs:\n  a:\n    runs-on: ubuntu-latest\n"
	res := Default().Validate(parse(t, src), src)
	if !hasMessage(res.Diagnostics, "'on'") {
		t.Errorf("expected missing-trigger diagnostic, got %v", res.Diagnostics)
	}
}

func TestSet_Names(t *testing.T) {
	names := Default().Names()
	if len(names) != 25 {
		t.Fatalf("len(Names()) = %d, want 25", len(names))
	}
	seen := make(map[string]bool)
	for _, n := range names {
		if n == "" {
			t.Error("empty rule name")
		}
		if seen[n] {
			t.Errorf("duplicate rule name %q", n)
		}
		seen[n] = true
	}
}

func TestSet_Add(t *testing.T) {
	set := NewSet(NonEmpty{})
	set.Add(Syntax{})
	if got := set.Names(); len(got) != 2 || got[1] != "syntax" {
		t.Fatalf("Names() after Add = %v", got)
	}
}

func TestSet_RuleStampedOnDiagnostics(t *testing.T) {
	res := Default().Validate(parse(t, ""), "")
	if len(res.Diagnostics) != 1 {
		t.Fatalf("empty input diagnostics = %v, want one", res.Diagnostics)
	}
	if got := res.Diagnostics[0].Rule; got != "non_empty" {
		t.Errorf("Rule = %q, want %q", got, "non_empty")
	}
}
