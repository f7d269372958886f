package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// clean strips surrounding whitespace and one layer of quotes from raw
// scalar text.
func clean(raw string) string {
	return syntax.CleanScalar(raw)
}

// isExpr reports whether a value carries an unresolved interpolation.
// Shape and type checks skip such values: the final text is only known
// at run time.
func isExpr(s string) bool {
	return strings.Contains(s, "${{")
}

// headSpan is the fallback span for findings without a better anchor:
// the first hundred bytes of the document.
func headSpan(source string) diag.Span {
	return diag.Span{Start: 0, End: uint32(min(100, len(source)))}
}

// jobEntry is one direct entry of the top-level jobs mapping.
type jobEntry struct {
	name string
	key  *syntax.Node
	body *syntax.Node // value node; mapping for a real job definition
}

// jobsMapping returns the value of the top-level jobs key when it is a
// mapping, else nil.
func jobsMapping(tree *syntax.Tree, source string) *syntax.Node {
	v := syntax.FindValue(tree.TopLevelMapping(), source, "jobs")
	if v == nil || v.Kind != syntax.KindMapping {
		return nil
	}
	return v
}

// collectJobs lists the direct keys of the jobs mapping in document
// order. Entries with malformed keys are skipped.
func collectJobs(tree *syntax.Tree, source string) []jobEntry {
	jobs := jobsMapping(tree, source)
	if jobs == nil {
		return nil
	}
	var out []jobEntry
	for _, p := range jobs.Children {
		if p.Kind != syntax.KindPair {
			continue
		}
		key := p.Key()
		name := clean(key.Text(source))
		if name == "" {
			continue
		}
		out = append(out, jobEntry{name: name, key: key, body: p.Value()})
	}
	return out
}

// eachStep visits every step mapping of every job, in document order.
// Steps that are not mappings (scalars, missing payloads) are passed
// through as-is so structural rules can flag them.
func eachStep(tree *syntax.Tree, source string, fn func(job jobEntry, step *syntax.Node)) {
	for _, job := range collectJobs(tree, source) {
		if job.body == nil || job.body.Kind != syntax.KindMapping {
			continue
		}
		steps := syntax.FindValue(job.body, source, "steps")
		if steps == nil || steps.Kind != syntax.KindSequence {
			continue
		}
		for _, item := range steps.Children {
			if item.Kind != syntax.KindItem {
				continue
			}
			if payload := item.Value(); payload != nil {
				fn(job, payload)
			}
		}
	}
}

// eachRunScript visits every run value at any nesting depth below n.
func eachRunScript(n *syntax.Node, source string, fn func(value *syntax.Node)) {
	syntax.Walk(n, func(c *syntax.Node) bool {
		if c.Kind == syntax.KindPair && clean(c.Key().Text(source)) == "run" {
			if v := c.Value(); v != nil && v.Kind == syntax.KindScalar {
				fn(v)
			}
			return false
		}
		return true
	})
}

// scalarValue returns the cleaned text of a mapping entry's scalar
// value. ok is false when the key is absent or the value is not a
// scalar.
func scalarValue(m *syntax.Node, source, key string) (string, *syntax.Node, bool) {
	v := syntax.FindValue(m, source, key)
	if v == nil || v.Kind != syntax.KindScalar {
		return "", v, false
	}
	return clean(v.Text(source)), v, true
}
