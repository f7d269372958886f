// Package gantry analyzes CI workflow documents. An Engine parses a
// YAML source into an error-tolerant syntax tree and runs an open set
// of independent validation rules over it, producing one deterministic,
// ordered diag.Result per call.
//
// The engine performs no IO and keeps no per-call state: one Engine is
// safe for any number of concurrent Analyze calls.
package gantry

import (
	"gantry/diag"
	"gantry/internal/parser"
	"gantry/internal/rules"
	"gantry/internal/syntax"
)

// Rule is one independent validation check. Custom rules plug into an
// Engine through AddRule; see the rules package for the contract.
type Rule = rules.Rule

// Snapshot is the reusable parse state of one analyzed document. It is
// opaque: callers hold it between edits of the same document and hand
// it back to AnalyzeIncremental so unchanged regions skip rescanning.
type Snapshot struct {
	tree *syntax.Tree
}

// Engine ties the parser and the rule set together.
type Engine struct {
	set *rules.Set
}

// New returns an engine loaded with the stock rule set.
func New() *Engine {
	return &Engine{set: rules.Default()}
}

// AddRule registers an extra rule after the stock set. Not safe to call
// concurrently with Analyze.
func (e *Engine) AddRule(r Rule) {
	e.set.Add(r)
}

// Rules returns the registered rule identifiers in execution order.
// The ids are the values stamped on diagnostics, so consumers can key
// suppression tables on them.
func (e *Engine) Rules() []string {
	return e.set.Names()
}

// Analyze parses source and runs every rule. Malformed input is not an
// error: the scanner marks unparseable regions in the tree and the
// syntax rule reports them as ordinary diagnostics. The returned error
// is non-nil only when no tree could be produced at all
// (parser.ErrParseFailed).
func (e *Engine) Analyze(source string) (diag.Result, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return diag.Result{}, err
	}
	return e.set.Validate(tree, source), nil
}

// AnalyzeIncremental is Analyze for successive versions of one
// document. old is the snapshot from the previous call, or nil for the
// first version; the result is identical to a fresh Analyze either way,
// only the parsing work differs.
func (e *Engine) AnalyzeIncremental(source string, old *Snapshot) (diag.Result, *Snapshot, error) {
	var oldTree *syntax.Tree
	if old != nil {
		oldTree = old.tree
	}
	tree, err := parser.ParseIncremental(source, oldTree)
	if err != nil {
		return diag.Result{}, nil, err
	}
	return e.set.Validate(tree, source), &Snapshot{tree: tree}, nil
}
