package rules

import (
	"strings"

	"gantry/diag"
	"gantry/internal/syntax"
)

// JobNeeds validates the job dependency graph. Edges come from each
// job's needs field (scalar or sequence). Three findings are kept
// distinct: a reference to an undeclared job, a self reference, and a
// multi-node circular chain. The graph is rebuilt from the tree on
// every call and never outlives it.
type JobNeeds struct{}

func (JobNeeds) Name() string           { return "job_needs" }
func (JobNeeds) RequiresWorkflow() bool { return true }

// needRef is one dependency edge origin as written in the document.
type needRef struct {
	target string
	span   diag.Span
}

func (JobNeeds) Validate(tree *syntax.Tree, source string) []diag.Diagnostic {
	jobs := collectJobs(tree, source)
	if len(jobs) == 0 {
		return nil
	}

	declared := make(map[string]diag.Span, len(jobs))
	order := make([]string, 0, len(jobs))
	for _, job := range jobs {
		if _, dup := declared[job.name]; dup {
			continue // duplicates are the job_name rule's finding
		}
		declared[job.name] = job.key.Span
		order = append(order, job.name)
	}

	var out []diag.Diagnostic
	edges := make(map[string][]string, len(jobs))
	for _, job := range jobs {
		if job.body == nil || job.body.Kind != syntax.KindMapping {
			continue
		}
		for _, ref := range needsRefs(job.body, source) {
			if _, ok := declared[ref.target]; !ok {
				out = append(out, diag.Errorf("job_needs", ref.span,
					"Job '%s' references nonexistent job: '%s'", job.name, ref.target))
				continue
			}
			if ref.target == job.name {
				out = append(out, diag.Errorf("job_needs", ref.span,
					"Job '%s' cannot reference self in 'needs'", job.name))
				continue
			}
			edges[job.name] = append(edges[job.name], ref.target)
		}
	}

	for _, cycle := range findCycles(order, edges) {
		span := declared[cycle[0]]
		out = append(out, diag.Errorf("job_needs", span,
			"circular dependency detected: %s", strings.Join(append(cycle, cycle[0]), " -> ")))
	}
	return out
}

// needsRefs extracts the dependency names listed in a job body's needs
// field, with the span of each name as written.
func needsRefs(body *syntax.Node, source string) []needRef {
	v := syntax.FindValue(body, source, "needs")
	if v == nil {
		return nil
	}
	var refs []needRef
	add := func(n *syntax.Node) {
		if name := clean(n.Text(source)); name != "" {
			refs = append(refs, needRef{target: name, span: n.Span})
		}
	}
	switch v.Kind {
	case syntax.KindScalar:
		add(v)
	case syntax.KindSequence:
		for _, item := range v.Children {
			if p := item.Value(); p != nil && p.Kind == syntax.KindScalar {
				add(p)
			}
		}
	}
	return refs
}

// findCycles runs a depth-first traversal with an explicit
// recursion-stack set and reports every distinct cycle of length two or
// more exactly once. Each cycle is canonicalized by rotating it so its
// lexicographically smallest member leads, which deduplicates the same
// loop discovered from different entry nodes. Runs in O(nodes + edges);
// self edges never reach here.
func findCycles(order []string, edges map[string][]string) [][]string {
	const (
		unvisited = iota
		inStack
		done
	)
	state := make(map[string]int, len(order))
	var path []string
	seen := make(map[string]bool)
	var cycles [][]string

	var visit func(node string)
	visit = func(node string) {
		state[node] = inStack
		path = append(path, node)
		for _, next := range edges[node] {
			switch state[next] {
			case unvisited:
				visit(next)
			case inStack:
				// path from next onward is the cycle body
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] != next {
						continue
					}
					cycle := canonicalCycle(path[i:])
					sig := strings.Join(cycle, "\x00")
					if !seen[sig] {
						seen[sig] = true
						cycles = append(cycles, cycle)
					}
					break
				}
			}
		}
		path = path[:len(path)-1]
		state[node] = done
	}

	for _, node := range order {
		if state[node] == unvisited {
			visit(node)
		}
	}
	return cycles
}

// canonicalCycle rotates the member list so the lexicographically
// smallest name comes first. The relative order of the chain is kept.
func canonicalCycle(members []string) []string {
	lo := 0
	for i, m := range members {
		if m < members[lo] {
			lo = i
		}
	}
	out := make([]string, 0, len(members))
	out = append(out, members[lo:]...)
	out = append(out, members[:lo]...)
	return out
}
