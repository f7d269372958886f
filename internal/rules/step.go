package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// Step validates the basic shape of each steps entry: a step must do
// something (uses or run), and an action reference should be pinned to
// a ref.
type Step struct{}

func (Step) Name() string           { return "step" }
func (Step) RequiresWorkflow() bool { return true }

func (Step) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachStep(tree, source, func(_ jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			out = append(out, diag.Errorf("step", step.Span, "Step must have either 'uses' or 'run' field"))
			return
		}
		usesPair := syntax.FindPair(step, source, "uses")
		runPair := syntax.FindPair(step, source, "run")
		if usesPair == nil && runPair == nil {
			out = append(out, diag.Errorf("step", step.Span, "Step must have either 'uses' or 'run' field"))
			return
		}
		if usesPair == nil {
			return
		}
		value := usesPair.Value()
		if value == nil || value.Kind != syntax.KindScalar {
			return
		}
		ref := clean(value.Text(source))
		if ref != "" && !isExpr(ref) && !strings.Contains(ref, "@") && !strings.HasPrefix(ref, "./") {
			out = append(out, diag.Warningf("step", value.Span,
				"Invalid action reference format: '%s' (missing @ref)", ref))
		}
	})
	return out
}

// maxStepNameLen bounds step display names; longer ones get truncated
// in the run view.
const maxStepNameLen = 100

// StepName keeps step names useful: non-empty and reasonably short.
type StepName struct{}

func (StepName) Name() string           { return "step_name" }
func (StepName) RequiresWorkflow() bool { return true }

func (StepName) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachStep(tree, source, func(_ jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			return
		}
		pair := syntax.FindPair(step, source, "name")
		if pair == nil {
			return
		}
		value := pair.Value()
		if value == nil {
			return
		}
		name := clean(value.Text(source))
		if name == "" {
			out = append(out, diag.Warningf("step_name", value.Span,
				"Step has empty name. Consider providing a descriptive name for better workflow visibility."))
			return
		}
		if !isExpr(name) && len(name) > maxStepNameLen {
			out = append(out, diag.Warningf("step_name", value.Span,
				"Step name is very long (%d characters). Consider using a shorter, more concise name.", len(name)))
		}
	})
	return out
}
