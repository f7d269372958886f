package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// StepID checks step ids: they must be unique within their job and
// follow the identifier grammar (letter or underscore first, then
// letters, digits, hyphens, underscores).
type StepID struct{}

func (StepID) Name() string           { return "step_id_uniqueness" }
func (StepID) RequiresWorkflow() bool { return true }

func (StepID) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	seen := make(map[string]map[string]bool)
	eachStep(tree, source, func(job jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			return
		}
		id, value, ok := scalarValue(step, source, "id")
		if !ok || id == "" {
			return
		}
		if !validStepID(id) {
			out = append(out, diag.Errorf("step_id_uniqueness", value.Span,
				"Job '%s' has step ID '%s' with invalid format. Step IDs must contain only alphanumeric characters, hyphens, and underscores.",
				job.name, id))
		}
		if seen[job.name] == nil {
			seen[job.name] = make(map[string]bool)
		}
		if seen[job.name][id] {
			out = append(out, diag.Errorf("step_id_uniqueness", value.Span,
				"Job '%s' has duplicate step ID: '%s'. Step IDs must be unique within a job.", job.name, id))
		}
		seen[job.name][id] = true
	})
	return out
}

func validStepID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return len(id) > 0
}
