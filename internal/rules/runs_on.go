package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

// RunsOnRequired checks that every job definition declares a runner.
// Reusable-call jobs (those with a `uses` key) run elsewhere and are
// exempt. A missing field spans the whole job; an empty value spans
// just the value.
type RunsOnRequired struct{}

func (RunsOnRequired) Name() string           { return "runs_on_required" }
func (RunsOnRequired) RequiresWorkflow() bool { return true }

func (RunsOnRequired) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, job := range collectJobs(tree, source) {
		if job.body == nil || job.body.Kind != syntax.KindMapping {
			continue
		}
		if syntax.FindPair(job.body, source, "uses") != nil {
			continue
		}
		value := syntax.FindValue(job.body, source, "runs-on")
		if value == nil {
			out = append(out, diag.Errorf("runs_on_required", job.key.Span.Cover(job.body.Span),
				"Job '%s' is missing required 'runs-on' field.", job.name))
			continue
		}
		if clean(value.Text(source)) == "" && value.Kind != syntax.KindSequence {
			out = append(out, diag.Errorf("runs_on_required", value.Span,
				"Job '%s' has empty 'runs-on' field. 'runs-on' is required and cannot be empty.", job.name))
		}
	}
	return out
}

// hostedRunnerLabels are the GitHub-hosted images a bare label can name.
var hostedRunnerLabels = map[string]bool{
	"ubuntu-latest":  true,
	"ubuntu-24.04":   true,
	"ubuntu-22.04":   true,
	"ubuntu-20.04":   true,
	"windows-latest": true,
	"windows-2025":   true,
	"windows-2022":   true,
	"windows-2019":   true,
	"macos-latest":   true,
	"macos-15":       true,
	"macos-14":       true,
	"macos-13":       true,
}

// RunnerLabel warns on runner labels outside the hosted vocabulary.
// Self-hosted labels and expressions are legitimate, so this never
// rises above a warning.
type RunnerLabel struct{}

func (RunnerLabel) Name() string           { return "runner_label" }
func (RunnerLabel) RequiresWorkflow() bool { return true }

func (RunnerLabel) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, job := range collectJobs(tree, source) {
		if job.body == nil || job.body.Kind != syntax.KindMapping {
			continue
		}
		value := syntax.FindValue(job.body, source, "runs-on")
		if value == nil || value.Kind != syntax.KindScalar {
			continue
		}
		label := clean(value.Text(source))
		if label == "" || isExpr(label) || label == "self-hosted" {
			continue
		}
		if !hostedRunnerLabels[label] {
			out = append(out, diag.Warningf("runner_label", value.Span,
				"Job '%s' uses unknown runner label: '%s'. This may be a valid self-hosted runner or custom label.", job.name, label))
		}
	}
	return out
}
