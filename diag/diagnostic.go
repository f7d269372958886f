package diag

import (
	"fmt"
	"sort"
)

// Diagnostic is a single finding tied to a span of the analyzed source.
type Diagnostic struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Span     Span     `json:"span"`
	Rule     string   `json:"rule"`
}

// String renders the canonical single-line form:
//
//	[Error] duplicate job name: 'build' (120..125)
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s (%d..%d)", d.Severity, d.Message, d.Span.Start, d.Span.End)
}

// Errorf builds an error diagnostic with a formatted message.
func Errorf(rule string, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: SevError,
		Span:     span,
		Rule:     rule,
	}
}

// Warningf builds a warning diagnostic with a formatted message.
func Warningf(rule string, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: SevWarning,
		Span:     span,
		Rule:     rule,
	}
}

// Infof builds an info diagnostic with a formatted message.
func Infof(rule string, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Severity: SevInfo,
		Span:     span,
		Rule:     rule,
	}
}

// Sort orders diagnostics by span start, then severity (errors first).
// The sort is stable: producers that emit in a fixed order keep that
// order among equal keys, which makes whole results reproducible.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Span.Start != ds[j].Span.Start {
			return ds[i].Span.Start < ds[j].Span.Start
		}
		return ds[i].Severity < ds[j].Severity
	})
}
