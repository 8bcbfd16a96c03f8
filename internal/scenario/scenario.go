// Package scenario holds the demo graphs run by the reactive CLI.
//
// Each scenario builds a small editor-like graph on a runtime and exposes a
// list of steps that mutate it. Effects write what they observe to a Log, so
// a run prints the exact propagation order.
package scenario

import (
	"fmt"
	"io"
	"sort"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// Scenario describes a demo graph.
type Scenario struct {
	Name        string
	Description string

	build func(in reactive.Option, log *Log) []Step
}

// Step is one mutation of a running scenario.
type Step struct {
	Label string
	Do    func()
}

// MaxLogLines is the number of lines a Log retains. Older lines are
// dropped, so a scenario stepped forever by serve stays bounded.
const MaxLogLines = 1024

// Log collects lines written by effects.
type Log struct {
	w     io.Writer
	lines []string
}

// Printf appends a formatted line and echoes it to the writer, if any.
func (l *Log) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	l.lines = append(l.lines, line)
	if len(l.lines) >= 2*MaxLogLines {
		l.lines = append(l.lines[:0:0], l.lines[len(l.lines)-MaxLogLines:]...)
	}
	if l.w != nil {
		fmt.Fprintln(l.w, "  "+line)
	}
}

// Lines returns the last MaxLogLines lines logged.
func (l *Log) Lines() []string {
	if n := len(l.lines); n > MaxLogLines {
		return l.lines[n-MaxLogLines:]
	}
	return l.lines
}

// Instance is a scenario built on a runtime.
type Instance struct {
	Scenario *Scenario
	Steps    []Step
	Log      *Log

	next int
	w    io.Writer
}

var registry = map[string]*Scenario{}

func register(s *Scenario) {
	registry[s.Name] = s
}

// Lookup returns the scenario with the given name.
func Lookup(name string) (*Scenario, error) {
	s, ok := registry[name]
	if !ok {
		return nil, errors.New("X001").WithDetailf("no scenario named %q", name)
	}
	return s, nil
}

// All returns every scenario, sorted by name.
func All() []*Scenario {
	list := make([]*Scenario, 0, len(registry))
	for _, s := range registry {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Start builds the scenario on rt. Effects run immediately, so their first
// output is written to w before Start returns. w may be nil.
func (s *Scenario) Start(rt *reactive.Runtime, w io.Writer) *Instance {
	log := &Log{w: w}
	if w != nil {
		fmt.Fprintf(w, "%s: setup\n", s.Name)
	}
	steps := s.build(reactive.WithRuntime(rt), log)
	return &Instance{Scenario: s, Steps: steps, Log: log, w: w}
}

// Step runs the next step, wrapping around at the end. It returns the label
// of the step that ran.
func (i *Instance) Step() string {
	if len(i.Steps) == 0 {
		return ""
	}
	step := i.Steps[i.next%len(i.Steps)]
	i.next++
	if i.w != nil {
		fmt.Fprintf(i.w, "%s: %s\n", i.Scenario.Name, step.Label)
	}
	step.Do()
	return step.Label
}

// Run runs every step once, in order.
func (i *Instance) Run() {
	for range i.Steps {
		i.Step()
	}
}
