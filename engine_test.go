package gantry

import (
	"reflect"
	"strings"
	"testing"

	"gantry/diag"
	"gantry/internal/syntax"
)

func analyze(t *testing.T, src string) diag.Result {
	t.Helper()
	res, err := New().Analyze(src)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	return res
}

func messages(res diag.Result) []string {
	out := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		out[i] = d.Message
	}
	return out
}

func hasDiag(res diag.Result, substr string) bool {
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}
	return false
}

func TestEngine_Deterministic(t *testing.T) {
	src := `name: ci
on: [push, pushh]
jobs:
  build:
    needs: ghost
    steps:
      - run: echo "::set-output name=x::1"
  build:
    runs-on: zz-latest
    steps:
      - name: ""
        run: git checkout ${{ github.head_ref }}
`
	eng := New()
	first, err := eng.Analyze(src)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if len(first.Diagnostics) == 0 {
		t.Fatal("fixture produced no diagnostics")
	}
	for i := 0; i < 20; i++ {
		res, err := eng.Analyze(src)
		if err != nil {
			t.Fatalf("run %d: Analyze() error: %v", i, err)
		}
		if !reflect.DeepEqual(res, first) {
			t.Fatalf("run %d differs:\n got %v\nwant %v", i, res.Diagnostics, first.Diagnostics)
		}
	}
}

func TestEngine_Ordering(t *testing.T) {
	src := `on: pushh
jobs:
  if:
    runs-on: zz
    steps:
      - shell: zsh
`
	res := analyze(t, src)
	for i := 1; i < len(res.Diagnostics); i++ {
		a, b := res.Diagnostics[i-1], res.Diagnostics[i]
		if a.Span.Start > b.Span.Start {
			t.Fatalf("diagnostics out of order: %v before %v", a, b)
		}
		if a.Span.Start == b.Span.Start && a.Severity > b.Severity {
			t.Fatalf("severity tie broken wrong: %v before %v", a, b)
		}
	}
}

func TestEngine_EmptyDocument(t *testing.T) {
	for _, src := range []string{"", "   \n\t\n"} {
		res := analyze(t, src)
		if len(res.Diagnostics) != 1 {
			t.Fatalf("source %q: got %v, want exactly one", src, res.Diagnostics)
		}
		d := res.Diagnostics[0]
		if d.Message != "Document is empty" || d.Severity != diag.SevWarning || d.Rule != "non_empty" {
			t.Errorf("got %+v", d)
		}
		if !res.IsOK() {
			t.Error("empty document must not fail validation")
		}
	}
}

func TestEngine_PlainYAMLNotAWorkflow(t *testing.T) {
	// Arbitrary YAML that is not workflow-shaped collects no
	// workflow findings.
	res := analyze(t, "key: value\nanother: thing\n")
	for _, d := range res.Diagnostics {
		t.Errorf("unexpected diagnostic on plain YAML: %v", d)
	}
}

func TestEngine_JobGraph(t *testing.T) {
	src := `on: push
jobs:
  a:
    runs-on: ubuntu-latest
    needs: b
  b:
    runs-on: ubuntu-latest
    needs: a
  c:
    runs-on: ubuntu-latest
    needs: [c, ghost]
`
	res := analyze(t, src)
	circular := 0
	for _, d := range res.Diagnostics {
		if strings.Contains(d.Message, "circular") {
			circular++
		}
	}
	if circular != 1 {
		t.Errorf("got %d circular-dependency diagnostics, want 1:\n%v", circular, messages(res))
	}
	if !hasDiag(res, "cannot reference self") {
		t.Errorf("self-reference missing: %v", messages(res))
	}
	if !hasDiag(res, "nonexistent job: 'ghost'") {
		t.Errorf("unknown reference missing: %v", messages(res))
	}
	if res.IsOK() {
		t.Error("graph errors must fail validation")
	}
}

func TestEngine_DuplicateAndReservedJobNames(t *testing.T) {
	src := `on: push
jobs:
  build:
    runs-on: ubuntu-latest
  build:
    runs-on: ubuntu-latest
  if:
    runs-on: ubuntu-latest
`
	res := analyze(t, src)
	if !hasDiag(res, "duplicate job name: 'build'") {
		t.Errorf("duplicate missing: %v", messages(res))
	}
	if !hasDiag(res, "Reserved name") {
		t.Errorf("reserved name missing: %v", messages(res))
	}
}

func TestEngine_CleanWorkflowPasses(t *testing.T) {
	src := `name: ci
on:
  push:
    branches: [main]
  pull_request:
jobs:
  test:
    runs-on: ubuntu-latest
    timeout-minutes: 30
    steps:
      - name: Checkout
        uses: actions/checkout@v4
      - name: Run tests
        run: make test
`
	res := analyze(t, src)
	if len(res.Diagnostics) != 0 {
		t.Errorf("clean workflow produced diagnostics: %v", messages(res))
	}
	if !res.IsOK() {
		t.Error("IsOK() = false, want true")
	}
}

func TestEngine_AnalyzeIncremental(t *testing.T) {
	v1 := `name: ci
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: make
  test:
    runs-on: ubuntu-latest
    steps:
      - run: make test
`
	v2 := strings.Replace(v1, "runs-on: ubuntu-latest\n    steps:\n      - run: make\n", "runs-on: zz-latest\n    steps:\n      - run: make\n", 1)

	eng := New()
	res1, snap, err := eng.AnalyzeIncremental(v1, nil)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if len(res1.Diagnostics) != 0 {
		t.Fatalf("v1 diagnostics: %v", messages(res1))
	}

	res2, snap2, err := eng.AnalyzeIncremental(v2, snap)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	fresh, err := eng.Analyze(v2)
	if err != nil {
		t.Fatalf("fresh pass: %v", err)
	}
	if !reflect.DeepEqual(res2, fresh) {
		t.Errorf("incremental result differs from fresh:\n got %v\nwant %v", res2.Diagnostics, fresh.Diagnostics)
	}
	if snap2 == nil {
		t.Fatal("second pass returned nil snapshot")
	}

	// Identical text again: still equivalent.
	res3, _, err := eng.AnalyzeIncremental(v2, snap2)
	if err != nil {
		t.Fatalf("third pass: %v", err)
	}
	if !reflect.DeepEqual(res3, fresh) {
		t.Errorf("no-op edit differs from fresh:\n got %v\nwant %v", res3.Diagnostics, fresh.Diagnostics)
	}
}

func TestEngine_Rules(t *testing.T) {
	eng := New()
	names := eng.Rules()
	if len(names) != 25 {
		t.Fatalf("len(Rules()) = %d, want 25", len(names))
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Errorf("duplicate rule id %q", n)
		}
		seen[n] = true
	}
}

type bannedWordRule struct{}

func (bannedWordRule) Name() string           { return "banned_word" }
func (bannedWordRule) RequiresWorkflow() bool { return false }

func (bannedWordRule) Validate(_ *syntax.Tree, source string) []diag.Diagnostic {
	idx := strings.Index(source, "hunter2")
	if idx < 0 {
		return nil
	}
	span := diag.Span{Start: uint32(idx), End: uint32(idx + len("hunter2"))}
	return []diag.Diagnostic{diag.Infof("banned_word", span, "banned word")}
}

func TestEngine_AddRule(t *testing.T) {
	eng := New()
	eng.AddRule(bannedWordRule{})
	if n := len(eng.Rules()); n != 26 {
		t.Fatalf("len(Rules()) after AddRule = %d, want 26", n)
	}
	res, err := eng.Analyze("password: hunter2\n")
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	found := false
	for _, d := range res.Diagnostics {
		if d.Rule == "banned_word" && d.Severity == diag.SevInfo {
			found = true
		}
	}
	if !found {
		t.Errorf("custom rule did not fire: %v", messages(res))
	}
}
