package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// deprecatedCommands maps retired workflow commands to their literal
// replacement guidance. The table is read-only static configuration.
var deprecatedCommands = []struct {
	command     string
	replacement string
}{
	{"::set-output", "Use `echo \"name=value\" >> $GITHUB_OUTPUT` instead"},
	{"::save-state", "Use `echo \"name=value\" >> $GITHUB_STATE` instead"},
	{"::set-env", "Use `echo \"name=value\" >> $GITHUB_ENV` instead"},
	{"::add-path", "Use `echo \"path\" >> $GITHUB_PATH` instead"},
}

// DeprecatedCommands scans every run script, at any nesting depth, for
// the retired workflow-command syntax. One warning per command per
// script, spanning the whole script value.
type DeprecatedCommands struct{}

func (DeprecatedCommands) Name() string           { return "deprecated_commands" }
func (DeprecatedCommands) RequiresWorkflow() bool { return true }

func (DeprecatedCommands) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachRunScript(tree.Root, source, func(value *syntax.Node) {
		script := value.Text(source)
		for _, dep := range deprecatedCommands {
			if strings.Contains(script, dep.command) {
				out = append(out, diag.Warningf("deprecated_commands", value.Span,
					"Deprecated workflow command '%s' detected. %s", dep.command, dep.replacement))
			}
		}
	})
	return out
}
