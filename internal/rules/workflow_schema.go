package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// WorkflowSchema checks that a workflow declares a trigger. The search
// covers the whole tree, not just the top level, so an `on` key buried
// under a wrongly indented block still counts as present; the indent
// problem is the syntax rule's to report.
type WorkflowSchema struct{}

func (WorkflowSchema) Name() string           { return "workflow_schema" }
func (WorkflowSchema) RequiresWorkflow() bool { return true }

func (WorkflowSchema) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	if syntax.HasKeyDeep(tree.Root, source, "on") {
		return nil
	}
	return []diag.Diagnostic{
		diag.Errorf("workflow_schema", headSpan(source), "Workflow must have an 'on' field"),
	}
}
