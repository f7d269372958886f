package diag

// Result holds the ordered diagnostics of one analysis call.
type Result struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// IsOK reports whether the result carries no error-severity diagnostics.
// Warnings and infos never fail a run.
func (r Result) IsOK() bool {
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Severity == SevError {
			return false
		}
	}
	return true
}

// Count returns the number of diagnostics with the given severity.
func (r Result) Count(sev Severity) int {
	n := 0
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Severity == sev {
			n++
		}
	}
	return n
}
