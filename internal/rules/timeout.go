package rules

import (
	"strconv"
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// maxTimeoutMinutes is the platform ceiling for a single step or job.
const maxTimeoutMinutes = 360

// JobTimeout validates job-level timeout-minutes values: they must be
// positive numbers. Expressions are skipped, quoted numbers are flagged
// as strings.
type JobTimeout struct{}

func (JobTimeout) Name() string           { return "timeout_minutes" }
func (JobTimeout) RequiresWorkflow() bool { return true }

func (JobTimeout) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, job := range collectJobs(tree, source) {
		if job.body == nil || job.body.Kind != syntax.KindMapping {
			continue
		}
		value := syntax.FindValue(job.body, source, "timeout-minutes")
		if value == nil || value.Kind != syntax.KindScalar {
			continue
		}
		subject := "Job '" + job.name + "'"
		out = append(out, checkTimeoutValue("timeout_minutes", subject, value, source, false)...)
	}
	return out
}

// StepTimeout applies the same checks to step-level timeout-minutes,
// plus a warning when the value exceeds the platform ceiling.
type StepTimeout struct{}

func (StepTimeout) Name() string           { return "step_timeout" }
func (StepTimeout) RequiresWorkflow() bool { return true }

func (StepTimeout) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachStep(tree, source, func(_ jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			return
		}
		value := syntax.FindValue(step, source, "timeout-minutes")
		if value == nil || value.Kind != syntax.KindScalar {
			return
		}
		out = append(out, checkTimeoutValue("step_timeout", "Step", value, source, true)...)
	})
	return out
}

// checkTimeoutValue inspects one timeout-minutes scalar. subject names
// the owner for the message ("Job 'build'" or "Step").
func checkTimeoutValue(rule, subject string, value *syntax.Node, source string, warnCeiling bool) []diag.Diagnostic {
	raw := strings.TrimSpace(value.Text(source))
	cleaned := clean(raw)
	if cleaned == "" || isExpr(cleaned) {
		return nil
	}

	quoted := len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'')
	minutes, err := strconv.ParseFloat(cleaned, 64)
	switch {
	case quoted && err == nil:
		return []diag.Diagnostic{diag.Errorf(rule, value.Span,
			"%s has invalid timeout-minutes: '%s'. Timeout must be a number, not a string.", subject, cleaned)}
	case err != nil:
		return []diag.Diagnostic{diag.Errorf(rule, value.Span,
			"%s has invalid timeout-minutes: '%s'. Timeout must be a number or expression.", subject, cleaned)}
	case minutes <= 0:
		return []diag.Diagnostic{diag.Errorf(rule, value.Span,
			"%s has invalid timeout-minutes: '%s'. Timeout must be a positive number (greater than zero).", subject, cleaned)}
	case warnCeiling && minutes > maxTimeoutMinutes:
		return []diag.Diagnostic{diag.Warningf(rule, value.Span,
			"%s timeout-minutes of %s exceeds the %d-minute platform maximum.", subject, cleaned, maxTimeoutMinutes)}
	}
	return nil
}
