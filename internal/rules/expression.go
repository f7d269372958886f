package rules

import (
	"strconv"
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// expressionContexts are the value namespaces an interpolation can
// start from.
var expressionContexts = map[string]bool{
	"github":   true,
	"env":      true,
	"vars":     true,
	"secrets":  true,
	"needs":    true,
	"inputs":   true,
	"matrix":   true,
	"steps":    true,
	"job":      true,
	"jobs":     true,
	"runner":   true,
	"strategy": true,
}

// expressionFunctions are the built-in calls; toJSON/fromJSON match
// case-insensitively, everything else exactly.
var expressionFunctions = map[string]bool{
	"contains":   true,
	"startsWith": true,
	"endsWith":   true,
	"format":     true,
	"join":       true,
	"toJSON":     true,
	"fromJSON":   true,
	"hashFiles":  true,
	"success":    true,
	"failure":    true,
	"cancelled":  true,
	"always":     true,
}

// Expression scans the raw source for ${{ … }} interpolations and
// validates each one: it must be closed, non-empty, rooted in a known
// context (or be a function call, operator expression, or literal), and
// must not use JavaScript-only operators. The scan works on text, not
// the tree, so expressions inside block scalars are covered too.
// Interpolations on comment lines are ignored.
type Expression struct{}

func (Expression) Name() string           { return "expression" }
func (Expression) RequiresWorkflow() bool { return false }

func (Expression) Validate(_ *syntax.Tree, source string) []diag.Diagnostic {
	var out []diag.Diagnostic
	pos := 0
	for {
		idx := strings.Index(source[pos:], "${{")
		if idx < 0 {
			break
		}
		start := pos + idx
		pos = start + 3

		if onCommentLine(source, start) {
			continue
		}

		rest := strings.Index(source[pos:], "}}")
		if rest < 0 {
			end := min(start+50, len(source))
			out = append(out, diag.Errorf("expression",
				diag.Span{Start: uint32(start), End: uint32(end)}, "unclosed expression"))
			break
		}
		end := pos + rest + 2
		span := diag.Span{Start: uint32(start), End: uint32(end)}
		inner := strings.TrimSpace(source[start+3 : end-2])
		pos = end

		if inner == "" {
			out = append(out, diag.Errorf("expression", span, "Empty expression"))
			continue
		}
		if strings.Contains(inner, "===") || strings.Contains(inner, "!==") {
			out = append(out, diag.Errorf("expression", span,
				"Invalid operator in expression: '%s'. Use '==' and '!=' for equality, not '===' or '!=='.", inner))
			continue
		}
		if !plausibleExpression(inner) {
			out = append(out, diag.Errorf("expression", span, "Invalid expression syntax: '%s'", inner))
			continue
		}
		out = append(out, checkExpressionFunctions(inner, span)...)
	}
	return out
}

// onCommentLine reports whether offset sits on a line whose first
// content byte is '#'.
func onCommentLine(source string, offset int) bool {
	lineStart := strings.LastIndexByte(source[:offset], '\n') + 1
	before := strings.TrimLeft(source[lineStart:offset], " \t")
	return strings.HasPrefix(before, "#")
}

// plausibleExpression accepts anything rooted in a known context, any
// function call or operator expression, and plain literals. The goal is
// catching typos like ${{ foo }} without parsing the full grammar.
func plausibleExpression(expr string) bool {
	head := expr
	if dot := strings.IndexAny(expr, ".[( "); dot > 0 {
		head = expr[:dot]
	}
	head = strings.TrimPrefix(head, "!")
	if expressionContexts[head] {
		return true
	}
	for _, op := range []string{"==", "!=", "&&", "||", "<", ">"} {
		if strings.Contains(expr, op) {
			return true
		}
	}
	if strings.Contains(expr, "(") {
		return true
	}
	if expr == "true" || expr == "false" {
		return true
	}
	if _, err := strconv.ParseFloat(expr, 64); err == nil {
		return true
	}
	if len(expr) >= 2 && expr[0] == '\'' && expr[len(expr)-1] == '\'' {
		return true
	}
	return false
}

// checkExpressionFunctions warns on calls to names outside the built-in
// function set.
func checkExpressionFunctions(expr string, span diag.Span) []diag.Diagnostic {
	var out []diag.Diagnostic
	for i := 0; i < len(expr); i++ {
		if expr[i] != '(' {
			continue
		}
		nameEnd := i
		nameStart := nameEnd
		for nameStart > 0 && isWordByte(expr[nameStart-1]) {
			nameStart--
		}
		name := expr[nameStart:nameEnd]
		if name == "" {
			continue
		}
		// function names follow operators or whitespace, never a dot:
		// github.event(x) is property access gone wrong, not a call.
		if nameStart > 0 && expr[nameStart-1] == '.' {
			continue
		}
		if !expressionFunctions[name] && !expressionFunctions[canonicalFunctionName(name)] {
			out = append(out, diag.Warningf("expression", span,
				"Unknown function in expression: '%s'", name))
		}
	}
	return out
}

func canonicalFunctionName(name string) string {
	switch strings.ToLower(name) {
	case "tojson":
		return "toJSON"
	case "fromjson":
		return "fromJSON"
	case "startswith":
		return "startsWith"
	case "endswith":
		return "endsWith"
	case "hashfiles":
		return "hashFiles"
	}
	return name
}
