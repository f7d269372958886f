package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// untrustedContexts are expression prefixes whose values an outside
// contributor controls. Interpolating them straight into a shell script
// lets a crafted branch name or issue title run arbitrary commands.
var untrustedContexts = []string{
	"github.event.issue.title",
	"github.event.issue.body",
	"github.event.pull_request.title",
	"github.event.pull_request.body",
	"github.event.comment.body",
	"github.event.review.body",
	"github.event.head_commit.message",
	"github.event.commits",
	"github.event.pull_request.head.ref",
	"github.event.pull_request.head.label",
	"github.head_ref",
}

// ScriptInjection warns when a run script interpolates user-controlled
// context values directly.
type ScriptInjection struct{}

func (ScriptInjection) Name() string           { return "script_injection" }
func (ScriptInjection) RequiresWorkflow() bool { return true }

func (ScriptInjection) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	eachRunScript(tree.Root, source, func(value *syntax.Node) {
		script := value.Text(source)
		if !strings.Contains(script, "${{") {
			return
		}
		for _, ctx := range untrustedContexts {
			if containsContext(script, ctx) {
				out = append(out, diag.Warningf("script_injection", value.Span,
					"Potential script injection: untrusted input '%s' is used directly in a 'run' script. Use an environment variable instead: env: MY_VAR: ${{ %s }}", ctx, ctx))
			}
		}
	})
	return out
}

// containsContext looks for the context inside an interpolation, so a
// literal mention in a comment or echo string without ${{ }} does not
// fire.
func containsContext(script, ctx string) bool {
	for i := 0; ; {
		start := strings.Index(script[i:], "${{")
		if start < 0 {
			return false
		}
		start += i
		end := strings.Index(script[start:], "}}")
		if end < 0 {
			return strings.Contains(script[start:], ctx)
		}
		end += start
		if strings.Contains(script[start:end], ctx) {
			return true
		}
		i = end + 2
	}
}
