// Package diag defines the diagnostic model shared by the engine, the
// rules, and every consumer surface (CLI, LSP, caches, bindings).
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Error, Warning, Info) defined in severity.go.
//     Error sorts first; the numeric order is the sort order.
//   - Rule – stable string identifier of the producing rule. Consumers key
//     suppression and severity overrides on it.
//   - Message – human oriented text; keep it short and actionable.
//   - Span – half-open byte range [Start, End) into the analyzed source.
//
// Result wraps an ordered diagnostic list for one analysis call. A Result
// is ok when it carries no Error-severity diagnostics; warnings and infos
// never fail a run.
//
// # Scope
//
// Package diag performs no IO, no formatting beyond String, and never
// inspects source text. Anything that reads files or renders output lives
// in the consumer layers. Keep the model deterministic and serialisable:
// results are cached and compared byte-for-byte.
package diag
