package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// Environment validates job environment declarations: the name (scalar
// form or the mapping's name entry) must not contain spaces, and
// deployment protection rules do not belong in workflow files.
type Environment struct{}

func (Environment) Name() string           { return "environment" }
func (Environment) RequiresWorkflow() bool { return true }

func (Environment) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	checkName := func(value *syntax.Node) {
		name := clean(value.Text(source))
		if name == "" || isExpr(name) {
			return
		}
		if strings.ContainsAny(name, " \t") {
			out = append(out, diag.Errorf("environment", value.Span,
				"Invalid environment name format: '%s' (contains spaces)", name))
		}
	}

	for _, job := range collectJobs(tree, source) {
		if job.body == nil || job.body.Kind != syntax.KindMapping {
			continue
		}
		env := syntax.FindValue(job.body, source, "environment")
		if env == nil {
			continue
		}
		switch env.Kind {
		case syntax.KindScalar:
			checkName(env)
		case syntax.KindMapping:
			if v := syntax.FindValue(env, source, "name"); v != nil && v.Kind == syntax.KindScalar {
				checkName(v)
			}
			if p := syntax.FindPair(env, source, "protection_rules"); p != nil {
				out = append(out, diag.Warningf("environment", p.Key().Span,
					"environment protection_rules is not supported in workflow files. Configure protection rules in the repository environment settings."))
			}
		}
	}
	return out
}
