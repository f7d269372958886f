// Package observ carries the lightweight timing instrumentation behind
// --timings and the duration fields of the JSON output.
package observ

import (
	"fmt"
	"sync"
	"time"
)

// Phase is one stage of the validation pipeline. The set is closed:
// timing is per-stage, not per arbitrary label.
type Phase uint8

const (
	PhaseRead Phase = iota
	PhaseAnalyze
	PhaseRender
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseRead:
		return "read"
	case PhaseAnalyze:
		return "analyze"
	case PhaseRender:
		return "render"
	default:
		return "unknown"
	}
}

// Timer accumulates wall-clock time per pipeline phase. Files validate
// concurrently, so a phase's total is the sum over all samples, not
// elapsed time.
type Timer struct {
	mu      sync.Mutex
	totals  [phaseCount]time.Duration
	samples [phaseCount]int
}

func NewTimer() *Timer { return &Timer{} }

// Track starts timing one phase and returns the function that stops it.
// Safe to call from multiple goroutines.
func (t *Timer) Track(p Phase) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		t.mu.Lock()
		t.totals[p] += d
		t.samples[p]++
		t.mu.Unlock()
	}
}

// PhaseReport is the serializable form of one phase.
type PhaseReport struct {
	Phase      string  `json:"phase"`
	DurationMS float64 `json:"duration_ms"`
	Samples    int     `json:"samples"`
}

// Report aggregates the sampled phases with a total in milliseconds.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report converts the accumulated samples into their serializable form.
// Phases that never ran are omitted.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	var report Report
	var total time.Duration
	for p := Phase(0); p < phaseCount; p++ {
		if t.samples[p] == 0 {
			continue
		}
		total += t.totals[p]
		report.Phases = append(report.Phases, PhaseReport{
			Phase:      p.String(),
			DurationMS: durationToMillis(t.totals[p]),
			Samples:    t.samples[p],
		})
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Summary returns the human-readable form printed by --timings.
func (t *Timer) Summary() string {
	report := t.Report()
	out := "timings:\n"
	for _, p := range report.Phases {
		out += fmt.Sprintf("  %-10s %8.2f ms  (%d samples)\n", p.Phase, p.DurationMS, p.Samples)
	}
	out += fmt.Sprintf("  %-10s %8.2f ms\n", "total", report.TotalMS)
	return out
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
