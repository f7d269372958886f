package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// validShells is the fixed shell vocabulary; anything else must be a
// custom command template carrying a {0} placeholder.
var validShells = map[string]bool{
	"bash":       true,
	"sh":         true,
	"pwsh":       true,
	"powershell": true,
	"cmd":        true,
	"python":     true,
}

// StepShell validates the shell field of a step.
type StepShell struct{}

func (StepShell) Name() string           { return "step_shell" }
func (StepShell) RequiresWorkflow() bool { return true }

func (StepShell) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachStep(tree, source, func(_ jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			return
		}
		pair := syntax.FindPair(step, source, "shell")
		if pair == nil {
			return
		}
		value := pair.Value()
		if value == nil {
			return
		}
		shell := clean(value.Text(source))
		switch {
		case shell == "":
			out = append(out, diag.Errorf("step_shell", value.Span,
				"Step has empty shell value. Shell must be a valid shell name or custom command."))
		case isExpr(shell), validShells[shell], strings.Contains(shell, "{0}"):
		default:
			out = append(out, diag.Errorf("step_shell", value.Span,
				"Step has invalid shell: '%s'. Valid shells are: bash, pwsh, python, sh, cmd, powershell, or a custom command with {0} placeholder.", shell))
		}
	})
	return out
}

// StepContinueOnError requires continue-on-error to be a boolean or an
// expression.
type StepContinueOnError struct{}

func (StepContinueOnError) Name() string           { return "step_continue_on_error" }
func (StepContinueOnError) RequiresWorkflow() bool { return true }

func (StepContinueOnError) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachStep(tree, source, func(_ jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			return
		}
		v, value, ok := scalarValue(step, source, "continue-on-error")
		if !ok || v == "" || isExpr(v) {
			return
		}
		if v != "true" && v != "false" {
			out = append(out, diag.Errorf("step_continue_on_error", value.Span,
				"Step has invalid continue-on-error: '%s'. continue-on-error must be a boolean (true or false).", v))
		}
	})
	return out
}

// StepWorkingDirectory checks working-directory values: non-empty, and
// forward slashes so the path works on every runner OS.
type StepWorkingDirectory struct{}

func (StepWorkingDirectory) Name() string           { return "step_working_directory" }
func (StepWorkingDirectory) RequiresWorkflow() bool { return true }

func (StepWorkingDirectory) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachStep(tree, source, func(_ jobEntry, step *syntax.Node) {
		if step.Kind != syntax.KindMapping {
			return
		}
		pair := syntax.FindPair(step, source, "working-directory")
		if pair == nil {
			return
		}
		value := pair.Value()
		if value == nil {
			return
		}
		dir := clean(value.Text(source))
		if dir == "" {
			out = append(out, diag.Errorf("step_working_directory", value.Span,
				"Step has empty working-directory. working-directory must be a valid path."))
			return
		}
		if strings.Contains(dir, `\`) && !isExpr(dir) {
			out = append(out, diag.Warningf("step_working_directory", value.Span,
				"Step working-directory '%s' uses backslashes. Prefer forward slashes for cross-platform paths.", dir))
		}
	})
	return out
}
