package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gantry/internal/ui"
)

// progressSink feeds validation progress into the bubbletea display.
// When the UI is off every method is a no-op, so call sites stay
// unconditional.
type progressSink struct {
	events chan ui.Event
	doneCh chan struct{}
}

// newProgressSink starts the UI program when --ui is set and more than
// one file is being validated; a single file would flash and exit.
func newProgressSink(opts validateOptions, files []string) *progressSink {
	if !opts.ui || opts.jsonOut || len(files) < 2 {
		return &progressSink{}
	}
	s := &progressSink{
		events: make(chan ui.Event, 64),
		doneCh: make(chan struct{}),
	}
	model := ui.NewProgressModel("validating workflows", files, s.events)
	go func() {
		defer close(s.doneCh)
		program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
		// A broken terminal must not fail the validation itself.
		_, _ = program.Run()
	}()
	return s
}

func (s *progressSink) checking(file string) {
	if s.events != nil {
		s.events <- ui.Event{File: file, Status: ui.StatusChecking}
	}
}

func (s *progressSink) done(file string, ok bool, findings int) {
	if s.events == nil {
		return
	}
	status := ui.StatusOK
	if !ok {
		status = ui.StatusFail
	}
	s.events <- ui.Event{File: file, Status: status, Findings: findings}
}

// close ends the event stream; the model quits on channel close.
func (s *progressSink) close() {
	if s.events != nil {
		close(s.events)
		s.events = nil
	}
}

// wait blocks until the UI program has released the terminal.
func (s *progressSink) wait() {
	if s.doneCh != nil {
		s.close()
		<-s.doneCh
	}
}
