package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// Matrix validates strategy.matrix blocks: a matrix must be a non-empty
// mapping (or an expression), and its include/exclude entries must be
// sequences.
type Matrix struct{}

func (Matrix) Name() string           { return "matrix" }
func (Matrix) RequiresWorkflow() bool { return true }

func (Matrix) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, job := range collectJobs(tree, source) {
		if job.body == nil || job.body.Kind != syntax.KindMapping {
			continue
		}
		strategy := syntax.FindValue(job.body, source, "strategy")
		if strategy == nil || strategy.Kind != syntax.KindMapping {
			continue
		}
		matrix := syntax.FindValue(strategy, source, "matrix")
		if matrix == nil {
			continue
		}
		switch matrix.Kind {
		case syntax.KindScalar:
			if !isExpr(clean(matrix.Text(source))) {
				out = append(out, diag.Errorf("matrix", matrix.Span,
					"Invalid matrix syntax: matrix must contain keys or include/exclude"))
			}
		case syntax.KindMissing:
			out = append(out, diag.Errorf("matrix", matrix.Span, "matrix cannot be empty"))
		case syntax.KindMapping:
			if len(matrix.Children) == 0 {
				out = append(out, diag.Errorf("matrix", matrix.Span, "matrix cannot be empty"))
				break
			}
			for _, listKey := range []string{"include", "exclude"} {
				v := syntax.FindValue(matrix, source, listKey)
				if v == nil {
					continue
				}
				if v.Kind != syntax.KindSequence && !(v.Kind == syntax.KindScalar && isExpr(clean(v.Text(source)))) {
					out = append(out, diag.Errorf("matrix", v.Span,
						"Invalid %s syntax: must be an array", listKey))
				}
			}
		default:
			out = append(out, diag.Errorf("matrix", matrix.Span,
				"Invalid matrix syntax: matrix must contain keys or include/exclude"))
		}
	}
	return out
}
