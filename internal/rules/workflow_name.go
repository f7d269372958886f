package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// maxWorkflowNameLen is the platform limit for a workflow's display
// name.
const maxWorkflowNameLen = 255

// WorkflowName checks the top-level name value: present means non-empty
// and within the platform length limit. Interpolated names are exempt
// from the length check since their final text is unknown.
type WorkflowName struct{}

func (WorkflowName) Name() string           { return "workflow_name" }
func (WorkflowName) RequiresWorkflow() bool { return false }

func (WorkflowName) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	pair := syntax.FindPair(tree.TopLevelMapping(), source, "name")
	if pair == nil {
		return nil
	}
	value := pair.Value()
	if value == nil {
		return nil
	}

	var out []diag.Diagnostic
	name := clean(value.Text(source))
	if name == "" {
		out = append(out, diag.Errorf("workflow_name", value.Span, "Workflow name cannot be empty"))
	}
	if !isExpr(name) && len(name) > maxWorkflowNameLen {
		out = append(out, diag.Errorf("workflow_name", value.Span,
			"Workflow name is too long (%d characters, maximum is %d)", len(name), maxWorkflowNameLen))
	}
	return out
}
