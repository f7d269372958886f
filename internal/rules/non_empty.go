package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// NonEmpty flags documents with no content at all. An empty file is a
// warning, not an error: the pipeline simply defines nothing.
type NonEmpty struct{}

func (NonEmpty) Name() string           { return "non_empty" }
func (NonEmpty) RequiresWorkflow() bool { return false }

func (NonEmpty) Validate(_ *syntax.Tree, source string) []diag.Diagnostic {
	if strings.TrimSpace(source) != "" {
		return nil
	}
	return []diag.Diagnostic{
		diag.Warningf("non_empty", diag.Span{}, "Document is empty"),
	}
}
