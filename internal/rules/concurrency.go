package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// Concurrency validates concurrency blocks at the workflow and job
// level. The mapping form needs a group, and cancel-in-progress must be
// a boolean or an expression.
type Concurrency struct{}

func (Concurrency) Name() string           { return "concurrency" }
func (Concurrency) RequiresWorkflow() bool { return true }

func (Concurrency) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	check := func(block *syntax.Node, level string) {
		if block == nil || block.Kind != syntax.KindMapping {
			return
		}
		if syntax.FindPair(block, source, "group") == nil {
			out = append(out, diag.Errorf("concurrency", block.Span,
				"Concurrency at %s level is missing required 'group' field.", level))
		}
		cancel := syntax.FindValue(block, source, "cancel-in-progress")
		if cancel == nil || cancel.Kind != syntax.KindScalar {
			return
		}
		v := clean(cancel.Text(source))
		if v != "true" && v != "false" && !isExpr(v) {
			out = append(out, diag.Errorf("concurrency", cancel.Span,
				"Concurrency 'cancel-in-progress' at %s level must be a boolean (true/false).", level))
		}
	}

	check(syntax.FindValue(tree.TopLevelMapping(), source, "concurrency"), "workflow")
	for _, job := range collectJobs(tree, source) {
		if job.body != nil && job.body.Kind == syntax.KindMapping {
			check(syntax.FindValue(job.body, source, "concurrency"), "job")
		}
	}
	return out
}
