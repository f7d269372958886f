package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// validTriggerEvents are the bare event names accepted for a scalar
// `on:` value. Mapping forms (push with branch filters and so on) are
// not vocabulary-checked here.
var validTriggerEvents = map[string]bool{
	"push":                true,
	"pull_request":        true,
	"pull_request_target": true,
	"workflow_dispatch":   true,
	"workflow_call":       true,
	"workflow_run":        true,
	"repository_dispatch": true,
	"schedule":            true,
	"release":             true,
	"issues":              true,
	"issue_comment":       true,
	"merge_group":         true,
}

// WorkflowTrigger validates the shape of the `on` value: scalar events
// must come from the known vocabulary and flow sequences must not carry
// empty entries.
type WorkflowTrigger struct{}

func (WorkflowTrigger) Name() string           { return "workflow_trigger" }
func (WorkflowTrigger) RequiresWorkflow() bool { return true }

func (WorkflowTrigger) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	on := syntax.FindValue(tree.TopLevelMapping(), source, "on")
	if on == nil {
		return nil
	}

	var out []diag.Diagnostic
	switch on.Kind {
	case syntax.KindScalar:
		event := strings.ToLower(clean(on.Text(source)))
		if event != "" && !validTriggerEvents[event] {
			out = append(out, diag.Errorf("workflow_trigger", on.Span, "Invalid event type: '%s'", event))
		}
	case syntax.KindSequence:
		for _, item := range on.Children {
			if item.Kind != syntax.KindItem {
				continue
			}
			payload := item.Value()
			if payload != nil && payload.Kind == syntax.KindMissing {
				out = append(out, diag.Errorf("workflow_trigger", item.Span, "Invalid trigger syntax: empty array item"))
				continue
			}
			if payload != nil && payload.Kind == syntax.KindScalar {
				event := strings.ToLower(clean(payload.Text(source)))
				if event != "" && !validTriggerEvents[event] {
					out = append(out, diag.Errorf("workflow_trigger", payload.Span, "Invalid event type: '%s'", event))
				}
			}
		}
	}
	return out
}
