package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// Syntax surfaces scan errors as diagnostics. The scanner itself never
// fails on malformed input; it marks the regions it could not shape and
// this rule is the single place those markers become findings.
type Syntax struct{}

func (Syntax) Name() string           { return "syntax" }
func (Syntax) RequiresWorkflow() bool { return false }

func (Syntax) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	if !tree.HasErrors() {
		return nil
	}

	var out []diag.Diagnostic
	syntax.Walk(tree.Root, func(n *syntax.Node) bool {
		if n.Kind != syntax.KindError {
			return true
		}
		out = append(out, diag.Errorf("syntax", n.Span, "Syntax error: %s", snippet(n.Text(source), 50)))
		return false
	})

	if len(out) == 0 {
		out = append(out, diag.Errorf("syntax", headSpan(source), "YAML syntax error detected"))
	}
	return out
}

// snippet returns the first limit runes of s.
func snippet(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
