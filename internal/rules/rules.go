// Package rules holds the validation rules and the set that runs them.
// Every rule is a pure function of (tree, source): no IO, no state, no
// reading another rule's output. The set fans the rules out in parallel
// and merges their diagnostics into one deterministic order.
package rules

import (
	"golang.org/x/sync/errgroup"

	"gantry/diag"
	"gantry/internal/syntax"
)

// Rule is one independent check over a scanned document.
//
// Validate must be referentially transparent: identical inputs yield an
// identical diagnostic multiset. A rule degrades to "does not apply"
// on unexpected node shapes instead of failing the batch.
type Rule interface {
	// Name is the stable identifier stamped on every diagnostic the
	// rule emits. Consumers key suppression on it.
	Name() string

	// RequiresWorkflow reports whether the rule only applies to
	// workflow-shaped documents. Gated rules are skipped entirely when
	// the shared likelihood check fails, so arbitrary YAML files do not
	// collect workflow findings.
	RequiresWorkflow() bool

	// Validate checks the tree and returns zero or more diagnostics.
	Validate(tree *syntax.Tree, source string) []diag.Diagnostic
}

// Set is an ordered, immutable-after-construction collection of rules.
// One set is built at engine construction and shared read-only across
// every Validate call, so a single set is safe for concurrent callers.
type Set struct {
	rules []Rule
}

// NewSet builds a set from the given rules, keeping their order.
func NewSet(rules ...Rule) *Set {
	return &Set{rules: rules}
}

// Add appends a rule. Not safe to call concurrently with Validate.
func (s *Set) Add(r Rule) {
	s.rules = append(s.rules, r)
}

// Names returns the rule identifiers in registration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name()
	}
	return names
}

// Validate runs every rule over one immutable (tree, source) pair, one
// goroutine per rule, and merges the output. The workflow likelihood
// check runs once here; gated rules never recompute it.
//
// The final ordering is sorted by (span start, severity) with a stable
// tie-break on registration order, so the result is independent of
// which goroutine finishes first.
func (s *Set) Validate(tree *syntax.Tree, source string) diag.Result {
	isWorkflow := syntax.LooksLikeWorkflow(tree, source)

	perRule := make([][]diag.Diagnostic, len(s.rules))
	var g errgroup.Group
	for i, r := range s.rules {
		if r.RequiresWorkflow() && !isWorkflow {
			continue
		}
		g.Go(func() error {
			perRule[i] = r.Validate(tree, source)
			return nil
		})
	}
	// Rules are total over well-formed trees; the group carries no
	// error path.
	_ = g.Wait()

	var all []diag.Diagnostic
	for _, ds := range perRule {
		all = append(all, ds...)
	}
	diag.Sort(all)
	return diag.Result{Diagnostics: all}
}

// Default returns the stock rule set in its canonical order.
func Default() *Set {
	return NewSet(
		NonEmpty{},
		Syntax{},
		WorkflowSchema{},
		WorkflowTrigger{},
		WorkflowName{},
		JobName{},
		JobNeeds{},
		RunsOnRequired{},
		RunnerLabel{},
		JobTimeout{},
		StepTimeout{},
		Step{},
		StepName{},
		StepID{},
		StepShell{},
		StepContinueOnError{},
		StepWorkingDirectory{},
		DeprecatedCommands{},
		ScriptInjection{},
		Secrets{},
		Expression{},
		Permissions{},
		Environment{},
		Matrix{},
		Concurrency{},
	)
}
