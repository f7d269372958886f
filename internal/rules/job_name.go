package rules

import (
	"strings"
	"unicode"

	"gantry/diag"
	"gantry/internal/syntax"
)

// maxJobNameLen is the practical platform limit for a job identifier.
const maxJobNameLen = 100

// reservedJobNames are keywords the platform rejects as job ids,
// matched case-insensitively.
var reservedJobNames = map[string]bool{
	"if":    true,
	"else":  true,
	"elif":  true,
	"for":   true,
	"while": true,
	"with":  true,
}

// JobName validates the direct keys of the jobs mapping: uniqueness,
// length, character set, and the reserved-word list. The four checks
// are independent; one job can trip all of them at once.
type JobName struct{}

func (JobName) Name() string           { return "job_name" }
func (JobName) RequiresWorkflow() bool { return true }

func (JobName) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	jobs := collectJobs(tree, source)
	if len(jobs) == 0 {
		return nil
	}

	var out []diag.Diagnostic
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if seen[job.name] {
			out = append(out, diag.Errorf("job_name", job.key.Span, "duplicate job name: '%s'", job.name))
		}
		seen[job.name] = true

		if len(job.name) > maxJobNameLen {
			out = append(out, diag.Warningf("job_name", job.key.Span,
				"Job name '%s' is too long (%d characters). Consider using a shorter name.", job.name, len(job.name)))
		}
		if !validJobNameFormat(job.name) {
			out = append(out, diag.Errorf("job_name", job.key.Span,
				"Invalid job name: '%s'. Job names must contain only alphanumeric characters, hyphens, and underscores.", job.name))
		}
		if reservedJobNames[strings.ToLower(job.name)] {
			out = append(out, diag.Errorf("job_name", job.key.Span,
				"Reserved name cannot be used as job name: '%s'", job.name))
		}
	}
	return out
}

func validJobNameFormat(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
