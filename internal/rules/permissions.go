package rules

import (
	"gantry/diag"
	"gantry/internal/syntax"
)

var permissionScopes = map[string]bool{
	"actions":             true,
	"attestations":        true,
	"checks":              true,
	"contents":            true,
	"deployments":         true,
	"discussions":         true,
	"id-token":            true,
	"issues":              true,
	"models":              true,
	"packages":            true,
	"pages":               true,
	"pull-requests":       true,
	"repository-projects": true,
	"security-events":     true,
	"statuses":            true,
}

// Permissions validates permissions blocks at the workflow and job
// level: the scalar shorthand must be read-all/write-all/none, and the
// mapping form must use known scopes with read/write/none values.
type Permissions struct{}

func (Permissions) Name() string           { return "permissions" }
func (Permissions) RequiresWorkflow() bool { return true }

func (Permissions) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	check := func(block *syntax.Node) {
		if block == nil {
			return
		}
		switch block.Kind {
		case syntax.KindScalar:
			v := clean(block.Text(source))
			if v != "read-all" && v != "write-all" && v != "none" && !isExpr(v) {
				out = append(out, diag.Errorf("permissions", block.Span,
					"Invalid permission value: '%s' (must be 'read-all', 'write-all', or 'none')", v))
			}
		case syntax.KindMapping:
			for _, pair := range block.Children {
				if pair.Kind != syntax.KindPair {
					continue
				}
				scope := clean(pair.Key().Text(source))
				if !permissionScopes[scope] {
					out = append(out, diag.Errorf("permissions", pair.Key().Span,
						"Invalid permission scope: '%s'", scope))
				}
				value := pair.Value()
				if value == nil || value.Kind != syntax.KindScalar {
					continue
				}
				v := clean(value.Text(source))
				if v != "read" && v != "write" && v != "none" && !isExpr(v) {
					out = append(out, diag.Errorf("permissions", value.Span,
						"Invalid permission value: '%s' (must be 'read', 'write', or 'none')", v))
				}
			}
		}
	}

	check(syntax.FindValue(tree.TopLevelMapping(), source, "permissions"))
	for _, job := range collectJobs(tree, source) {
		if job.body != nil && job.body.Kind == syntax.KindMapping {
			check(syntax.FindValue(job.body, source, "permissions"))
		}
	}
	return out
}
